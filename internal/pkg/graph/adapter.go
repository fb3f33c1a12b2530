package graph

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cast"
)

var ErrUnexpectedResultFormat = errors.New("unexpected graph result format")

// Kind 图查询结果的形态
type Kind int

const (
	KindMap     Kind = iota + 1 // 本身就是键值结构（map、节点、关系、记录）
	KindWrapped                 // 键值结构包在 Object / Value 字段里
	KindPlain                   // 普通结构体
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindWrapped:
		return "wrapped"
	case KindPlain:
		return "plain"
	default:
		return "unknown"
	}
}

// Record 规范化后的键值记录
type Record map[string]any

// Lookup 先精确匹配键名，再忽略大小写匹配
func (r Record) Lookup(name string) (any, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// Result 图查询结果的标签联合
type Result struct {
	Kind   Kind
	Record Record
}

// Normalize 依次尝试 map、包装、普通对象三种形态
func Normalize(raw any) (Result, error) {
	if m, ok := asMap(raw); ok {
		return Result{Kind: KindMap, Record: m}, nil
	}
	if m, ok := asWrapped(raw); ok {
		return Result{Kind: KindWrapped, Record: m}, nil
	}
	if m, ok := asPlain(raw); ok {
		return Result{Kind: KindPlain, Record: m}, nil
	}
	return Result{}, fmt.Errorf("%w: %T", ErrUnexpectedResultFormat, raw)
}

// Unwrap 将任意查询结果转换为 Record
func Unwrap(raw any) (Record, error) {
	res, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}

// Parse 取出 fields 指定的字段（为空则取全部）并解码为 T，缺失字段保持零值
func Parse[T any](rec Record, fields ...string) (T, error) {
	var out T

	src := map[string]any(rec)
	if len(fields) > 0 {
		src = make(map[string]any, len(fields))
		for _, f := range fields {
			if v, ok := rec.Lookup(f); ok {
				src[f] = v
			}
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	if err = dec.Decode(toPlain(src)); err != nil {
		return out, fmt.Errorf("%w: %v", ErrUnexpectedResultFormat, err)
	}
	return out, nil
}

// ParseAll 解析 EagerResult 中每条记录 key 对应的值
func ParseAll[T any](res *neo4j.EagerResult, key string) ([]T, error) {
	if res == nil {
		return nil, nil
	}
	out := make([]T, 0, len(res.Records))
	for _, record := range res.Records {
		raw, ok := record.Get(key)
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrUnexpectedResultFormat, key)
		}
		rec, err := Unwrap(raw)
		if err != nil {
			return nil, err
		}
		v, err := Parse[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// GetVertexProperty 属性值可能是多版本列表，取第一个版本；不存在时返回 def
func GetVertexProperty(props Record, name, def string) string {
	v, ok := props.Lookup(name)
	if !ok || v == nil {
		return def
	}

	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return def
		}
		v = t[0]
	case []string:
		if len(t) == 0 {
			return def
		}
		v = t[0]
	}

	// {id, value} 形式的版本对象
	if m, ok := asMap(v); ok {
		inner, ok := m.Lookup("value")
		if !ok {
			return def
		}
		v = inner
	}
	if v == nil {
		return def
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

func recordToMap(r *neo4j.Record) Record {
	out := make(Record, len(r.Keys))
	for i, k := range r.Keys {
		if i < len(r.Values) {
			out[k] = r.Values[i]
		}
	}
	return out
}

func asMap(raw any) (Record, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case Record:
		return v, true
	case map[string]any:
		return v, true
	case neo4j.Node:
		return propsOrEmpty(v.Props), true
	case *neo4j.Node:
		if v == nil {
			return nil, false
		}
		return propsOrEmpty(v.Props), true
	case neo4j.Relationship:
		return propsOrEmpty(v.Props), true
	case *neo4j.Relationship:
		if v == nil {
			return nil, false
		}
		return propsOrEmpty(v.Props), true
	case neo4j.Record:
		return recordToMap(&v), true
	case *neo4j.Record:
		if v == nil {
			return nil, false
		}
		return recordToMap(v), true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(Record, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out, true
}

func asWrapped(raw any) (Record, bool) {
	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	for _, name := range []string{"Object", "Value"} {
		f := rv.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			continue
		}
		if m, ok := asMap(f.Interface()); ok {
			return m, true
		}
	}
	return nil, false
}

func asPlain(raw any) (Record, bool) {
	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}

	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &out, TagName: "json"})
	if err != nil {
		return nil, false
	}
	if err = dec.Decode(rv.Interface()); err != nil {
		return nil, false
	}
	return out, true
}

func propsOrEmpty(props map[string]any) Record {
	if props == nil {
		return Record{}
	}
	return props
}

// toPlain 递归展开嵌套的 map 类结构，结果只包含 map[string]any / []any / 标量
func toPlain(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toPlain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = toPlain(e)
		}
		return out
	}
	if m, ok := asMap(v); ok {
		return toPlain(map[string]any(m))
	}
	return v
}
