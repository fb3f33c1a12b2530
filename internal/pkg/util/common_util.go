package util

import (
	"regexp"
	"strings"
)

var tagRegex = regexp.MustCompile(`#(\S+)`)

// ExtractTags 提取去重后的标签（不含 #）
func ExtractTags(rawContent string) []string {
	matches := tagRegex.FindAllStringSubmatch(rawContent, -1)

	seen := make(map[string]struct{})
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.Trim(m[1], ".,，。!?！？#")
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// NormalizeInput 去掉首尾空白并转小写
func NormalizeInput(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DedupeCap 按出现顺序去重，最多保留 limit 个；limit <= 0 不限制
func DedupeCap(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func PtrStr(s string) *string {
	return &s
}
