package consts

// 建议范围
const (
	SuggestScopeBoth     = "both"
	SuggestScopeProfiles = "profiles"
)

// 媒体处理事件类型
const (
	MediaEventEntryURL   = "entry_url"
	MediaEventPostLinked = "post_linked"
)

const (
	HashtagPrefix = "#"
)
