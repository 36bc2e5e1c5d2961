package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/any-hub/objcache/internal/codec"
)

var supportedLogFormats = map[string]struct{}{
	"json": {},
	"text": {},
}

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if _, ok := supportedLogFormats[g.LogFormat]; g.LogFormat != "" && !ok {
		return newFieldError("Global.LogFormat", "仅支持 json/text")
	}
	if g.StoragePath == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}
	if g.DefaultMaxAge.DurationValue() < 0 {
		return newFieldError("Global.DefaultMaxAge", "不能为负数")
	}
	if g.DetachedWorkers < 0 {
		return newFieldError("Global.DetachedWorkers", "不能为负数")
	}
	if g.DetachedQueueSize < 0 {
		return newFieldError("Global.DetachedQueueSize", "不能为负数")
	}

	if len(c.Namespaces) == 0 {
		return errors.New("至少需要配置一个 Namespace")
	}

	seenNames := map[string]struct{}{}
	seenPrefixes := map[string]string{}
	for i := range c.Namespaces {
		ns := &c.Namespaces[i]
		if ns.Name == "" {
			return newFieldError(namespaceField("", "Name"), "不能为空")
		}
		if !validNamespaceName(ns.Name) {
			return newFieldError(namespaceField(ns.Name, "Name"), "仅允许 a-z0-9_-")
		}
		if _, exists := seenNames[ns.Name]; exists {
			return newFieldError(namespaceField(ns.Name, "Name"), "重复")
		}
		seenNames[ns.Name] = struct{}{}

		if _, ok := codec.Resolve(ns.Codec); !ok {
			return newFieldError(namespaceField(ns.Name, "Codec"),
				fmt.Sprintf("未注册编码: %s (可用 %s)", ns.Codec, strings.Join(codec.Names(), "|")))
		}
		if ns.MaxAge != nil && ns.MaxAge.DurationValue() < 0 {
			return newFieldError(namespaceField(ns.Name, "MaxAge"), "不能为负数")
		}
		switch ns.SaveMode {
		case SaveModeInherit, SaveModeSync, SaveModeDetached:
		default:
			return newFieldError(namespaceField(ns.Name, "SaveMode"), "仅支持 sync/detached")
		}
		if strings.ContainsAny(ns.FactoryPrefix, `/\`) {
			return newFieldError(namespaceField(ns.Name, "FactoryPrefix"), "不允许包含路径分隔符")
		}
		prefix := c.EffectiveFactoryPrefix(*ns)
		if owner, exists := seenPrefixes[prefix]; exists {
			return newFieldError(namespaceField(ns.Name, "FactoryPrefix"),
				fmt.Sprintf("前缀 %s 与 %s 冲突", prefix, namespaceField(owner, "FactoryPrefix")))
		}
		seenPrefixes[prefix] = ns.Name
	}

	return nil
}

func validNamespaceName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
