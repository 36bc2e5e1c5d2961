package cache

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// maxLabelLength 之内且字符安全的键直接作为文件名，否则追加哈希。
const maxLabelLength = 96

// Resolver 将不透明的缓存键映射为磁盘定位信息。
type Resolver interface {
	// NamespacePrefix 返回解析器默认使用的前缀，调用方可在其前面追加自己的前缀。
	NamespacePrefix() string
	// Resolve 结合最终前缀与键计算 Locator，不同键必须得到不同 Locator。
	Resolve(prefix string, key any) (Locator, error)
}

// KeyResolver 是默认解析器：文件名 = 前缀 + Label(key)。
type KeyResolver struct {
	prefix string
}

// NewKeyResolver 以 prefix 作为命名空间前缀构建解析器。
func NewKeyResolver(prefix string) *KeyResolver {
	return &KeyResolver{prefix: prefix}
}

func (r *KeyResolver) NamespacePrefix() string {
	return r.prefix
}

func (r *KeyResolver) Resolve(prefix string, key any) (Locator, error) {
	if key == nil {
		return Locator{}, errors.New("cache key required")
	}
	if strings.ContainsAny(prefix, `/\`) {
		return Locator{}, fmt.Errorf("invalid cache prefix: %q", prefix)
	}
	return Locator{Prefix: prefix, Name: Label(key)}, nil
}

// Label 返回键的可读标签。含有不安全字符或过长的键会被截断并追加
// "~<xxhash64>"，由于 '~' 不属于安全字符，原样标签与哈希标签不会互相冲突。
func Label(key any) string {
	raw := fmt.Sprint(key)
	if raw != "" && raw != "." && raw != ".." && len(raw) <= maxLabelLength && isSafeLabel(raw) {
		return raw
	}

	readable := sanitize(raw)
	if len(readable) > maxLabelLength/2 {
		readable = readable[:maxLabelLength/2]
	}
	return fmt.Sprintf("%s~%016x", readable, xxhash.Sum64String(raw))
}

// TypePrefix 根据 T 的类型名生成默认前缀，例如 Document_。
func TypePrefix[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return sanitize(name) + "_"
}

func isSafeLabel(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isSafeByte(s[i]) {
			return false
		}
	}
	return true
}

func isSafeByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '-':
		return true
	}
	return false
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isSafeByte(s[i]) {
			b.WriteByte(s[i])
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
