package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfgPath := fixturePath("valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if !filepath.IsAbs(cfg.Global.StoragePath) {
		t.Fatalf("StoragePath 应转换为绝对路径: %s", cfg.Global.StoragePath)
	}
	if cfg.Global.ListenPort != 5100 {
		t.Fatalf("ListenPort 应当被解析, got %d", cfg.Global.ListenPort)
	}
	if cfg.Global.LogFormat != "json" {
		t.Fatalf("LogFormat 默认应为 json, got %q", cfg.Global.LogFormat)
	}
	if cfg.Global.DefaultMaxAge.DurationValue() != 0 {
		t.Fatalf("DefaultMaxAge 默认应为 0")
	}
	if cfg.Global.DetachedQueueSize != 256 {
		t.Fatalf("DetachedQueueSize 默认应为 256, got %d", cfg.Global.DetachedQueueSize)
	}
	if len(cfg.Namespaces) != 2 {
		t.Fatalf("应解析两个命名空间, got %d", len(cfg.Namespaces))
	}
	if cfg.Namespaces[1].Codec != "yaml" {
		t.Fatalf("Codec 应归一化为小写, got %q", cfg.Namespaces[1].Codec)
	}
	if cfg.EffectiveMaxAge(cfg.Namespaces[0]) != 10*time.Minute {
		t.Fatalf("命名空间 MaxAge 应生效")
	}
	if cfg.EffectiveMaxAge(cfg.Namespaces[1]) != 0 {
		t.Fatalf("未设置 MaxAge 时应回退全局值")
	}
	if !cfg.EffectiveAsyncSave(cfg.Namespaces[1]) {
		t.Fatalf("detached 命名空间应启用后台写入")
	}
}

func TestValidateRejectsBadNamespace(t *testing.T) {
	cfgPath := fixturePath("missing.toml")

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatalf("不合法的配置应返回错误")
	}
	var fieldErr FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "Namespace[].Name" {
		t.Fatalf("应返回 Namespace[].Name 字段错误, got %v", err)
	}
}

func TestEffectiveMaxAgeOverrides(t *testing.T) {
	cfg := &Config{Global: GlobalConfig{DefaultMaxAge: Duration(time.Hour)}}
	ns := NamespaceConfig{MaxAge: NewDuration(2 * time.Hour)}
	if age := cfg.EffectiveMaxAge(ns); age != 2*time.Hour {
		t.Fatalf("覆盖 MaxAge 应该优先生效")
	}
	if age := cfg.EffectiveMaxAge(NamespaceConfig{}); age != time.Hour {
		t.Fatalf("未覆盖时应回退全局 MaxAge, got %s", age)
	}
}

func TestEffectiveMaxAgeExplicitZeroNeverExpires(t *testing.T) {
	cfg := &Config{Global: GlobalConfig{DefaultMaxAge: Duration(time.Hour)}}
	if age := cfg.EffectiveMaxAge(NamespaceConfig{MaxAge: NewDuration(0)}); age != 0 {
		t.Fatalf("显式 0 应表示永不过期而不是回退全局值, got %s", age)
	}
}

func TestValidateRejectsSharedFactoryPrefix(t *testing.T) {
	testCases := []struct {
		name       string
		namespaces []NamespaceConfig
		field      string
	}{
		{
			name: "explicit prefixes",
			namespaces: []NamespaceConfig{
				{Name: "a", Codec: "json", FactoryPrefix: "x_"},
				{Name: "b", Codec: "yaml", FactoryPrefix: "x_"},
			},
			field: "Namespace[b].FactoryPrefix",
		},
		{
			name: "explicit matches default",
			namespaces: []NamespaceConfig{
				{Name: "a_json", Codec: "json"},
				{Name: "a", Codec: "yaml", FactoryPrefix: "a_json_json_"},
			},
			field: "Namespace[a].FactoryPrefix",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Namespaces = tc.namespaces
			var fieldErr FieldError
			if err := cfg.Validate(); !errors.As(err, &fieldErr) || fieldErr.Field != tc.field {
				t.Fatalf("expected %s conflict, got %v", tc.field, err)
			}
		})
	}
}

func TestEffectiveAsyncSave(t *testing.T) {
	testCases := []struct {
		name     string
		global   bool
		mode     string
		expected bool
	}{
		{"inherit off", false, SaveModeInherit, false},
		{"inherit on", true, SaveModeInherit, true},
		{"sync overrides global", true, SaveModeSync, false},
		{"detached overrides global", false, SaveModeDetached, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Global: GlobalConfig{AsyncSave: tc.global}}
			if got := cfg.EffectiveAsyncSave(NamespaceConfig{SaveMode: tc.mode}); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestEffectiveFactoryPrefix(t *testing.T) {
	cfg := &Config{}
	if got := cfg.EffectiveFactoryPrefix(NamespaceConfig{Name: "profiles", Codec: "json"}); got != "profiles_json_" {
		t.Fatalf("默认前缀应为 <Name>_<Codec>_, got %q", got)
	}
	if got := cfg.EffectiveFactoryPrefix(NamespaceConfig{Name: "profiles", Codec: "json", FactoryPrefix: "v2_"}); got != "v2_" {
		t.Fatalf("显式前缀应优先, got %q", got)
	}
}

func TestValidateEnforcesListenPortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Global.ListenPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ListenPort 超出范围应当报错")
	}
}

func TestNamespaceValidation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown codec", func(c *Config) { c.Namespaces[0].Codec = "msgpack" }, "Namespace[profiles].Codec"},
		{"bad name", func(c *Config) { c.Namespaces[0].Name = "Pro/files" }, "Namespace[Pro/files].Name"},
		{"negative max age", func(c *Config) { c.Namespaces[0].MaxAge = NewDuration(-time.Second) }, "Namespace[profiles].MaxAge"},
		{"bad save mode", func(c *Config) { c.Namespaces[0].SaveMode = "later" }, "Namespace[profiles].SaveMode"},
		{"prefix separator", func(c *Config) { c.Namespaces[0].FactoryPrefix = "a/b_" }, "Namespace[profiles].FactoryPrefix"},
		{"duplicate", func(c *Config) {
			c.Namespaces = append(c.Namespaces, c.Namespaces[0])
		}, "Namespace[profiles].Name"},
		{"negative workers", func(c *Config) { c.Global.DetachedWorkers = -1 }, "Global.DetachedWorkers"},
		{"negative queue", func(c *Config) { c.Global.DetachedQueueSize = -1 }, "Global.DetachedQueueSize"},
		{"bad log format", func(c *Config) { c.Global.LogFormat = "xml" }, "Global.LogFormat"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			var fieldErr FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fieldErr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, fieldErr.Field)
			}
		})
	}
}

func TestValidateRequiresNamespace(t *testing.T) {
	cfg := validConfig()
	cfg.Namespaces = nil
	if err := cfg.Validate(); err == nil {
		t.Fatalf("缺少命名空间应报错")
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90")); err != nil || d.DurationValue() != 90*time.Second {
		t.Fatalf("纯数字应按秒解析: %v %s", err, d.DurationValue())
	}
	if err := d.UnmarshalText([]byte("1500ms")); err != nil || d.DurationValue() != 1500*time.Millisecond {
		t.Fatalf("Duration 字符串解析失败: %v", err)
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Fatalf("非法值应报错")
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			ListenPort:      5100,
			LogFormat:       "json",
			StoragePath:     "./data",
			DetachedWorkers: 8,
		},
		Namespaces: []NamespaceConfig{
			{Name: "profiles", Codec: "json"},
		},
	}
}
