package config

import (
	"testing"
	"time"
)

func TestLoadFailsWithMissingFields(t *testing.T) {
	if _, err := Load(fixturePath("missing.toml")); err == nil {
		t.Fatalf("缺失字段的配置应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
StoragePath = "./data"
DefaultMaxAge = "boom"

[[Namespace]]
Name = "profiles"
Codec = "json"
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadParsesSecondsAndFactoryPrefix(t *testing.T) {
	cfg := `
StoragePath = "./data"
DefaultMaxAge = 30
AsyncSave = true

[[Namespace]]
Name = "manifests"
Codec = " Raw "
SaveMode = "SYNC"
FactoryPrefix = "v2_"
`
	path := writeTempConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if loaded.Global.DefaultMaxAge.DurationValue() != 30*time.Second {
		t.Fatalf("纯数字 DefaultMaxAge 应按秒解析, got %s", loaded.Global.DefaultMaxAge.DurationValue())
	}
	ns := loaded.Namespaces[0]
	if ns.Codec != "raw" || ns.SaveMode != SaveModeSync {
		t.Fatalf("Codec/SaveMode 应归一化: %+v", ns)
	}
	if loaded.EffectiveAsyncSave(ns) {
		t.Fatalf("sync 命名空间不应继承全局 AsyncSave")
	}
	if loaded.EffectiveFactoryPrefix(ns) != "v2_" {
		t.Fatalf("FactoryPrefix 应保留显式值")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(fixturePath("absent.toml")); err == nil {
		t.Fatalf("配置文件不存在应报错")
	}
}

func TestLoadKeepsExplicitZeroMaxAge(t *testing.T) {
	cfg := `
StoragePath = "./data"
DefaultMaxAge = "1h"

[[Namespace]]
Name = "forever"
Codec = "json"
MaxAge = "0"

[[Namespace]]
Name = "seconds"
Codec = "json"
MaxAge = 0

[[Namespace]]
Name = "inherit"
Codec = "json"
`
	loaded, err := Load(writeTempConfig(t, cfg))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	for _, ns := range loaded.Namespaces[:2] {
		if ns.MaxAge == nil {
			t.Fatalf("%s: 显式 MaxAge 应被保留", ns.Name)
		}
		if age := loaded.EffectiveMaxAge(ns); age != 0 {
			t.Fatalf("%s: 显式 0 应永不过期, got %s", ns.Name, age)
		}
	}
	if age := loaded.EffectiveMaxAge(loaded.Namespaces[2]); age != time.Hour {
		t.Fatalf("未设置 MaxAge 应回退全局值, got %s", age)
	}
}

func TestLoadRejectsSharedFactoryPrefix(t *testing.T) {
	cfg := `
StoragePath = "./data"

[[Namespace]]
Name = "a"
Codec = "json"
FactoryPrefix = "x_"

[[Namespace]]
Name = "b"
Codec = "toml"
FactoryPrefix = "x_"
`
	if _, err := Load(writeTempConfig(t, cfg)); err == nil {
		t.Fatalf("共享 FactoryPrefix 应报错")
	}
}
