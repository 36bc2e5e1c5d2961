package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// NewDuration 返回指向 d 的 *Duration，便于构造可选字段。
func NewDuration(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// 命名空间写入模式。
const (
	SaveModeInherit  = ""
	SaveModeSync     = "sync"
	SaveModeDetached = "detached"
)

// GlobalConfig 描述全局运行时行为，所有命名空间共享同一份参数。
type GlobalConfig struct {
	ListenPort        int      `mapstructure:"ListenPort"`
	LogLevel          string   `mapstructure:"LogLevel"`
	LogFormat         string   `mapstructure:"LogFormat"`
	LogFilePath       string   `mapstructure:"LogFilePath"`
	LogMaxSize        int      `mapstructure:"LogMaxSize"`
	LogMaxBackups     int      `mapstructure:"LogMaxBackups"`
	LogMaxAgeDays     int      `mapstructure:"LogMaxAgeDays"`
	LogCompress       bool     `mapstructure:"LogCompress"`
	StoragePath       string   `mapstructure:"StoragePath"`
	DefaultMaxAge     Duration `mapstructure:"DefaultMaxAge"`
	AsyncSave         bool     `mapstructure:"AsyncSave"`
	DetachedWorkers   int      `mapstructure:"DetachedWorkers"`
	DetachedQueueSize int      `mapstructure:"DetachedQueueSize"`
}

// NamespaceConfig 决定一个缓存命名空间使用的编码、过期窗口与写入模式。
type NamespaceConfig struct {
	Name  string `mapstructure:"Name"`
	Codec string `mapstructure:"Codec"`

	// MaxAge 为 nil 表示未设置并回退全局值；显式 0 表示永不过期。
	MaxAge *Duration `mapstructure:"MaxAge"`

	SaveMode      string `mapstructure:"SaveMode"`
	FactoryPrefix string `mapstructure:"FactoryPrefix"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global     GlobalConfig      `mapstructure:",squash"`
	Namespaces []NamespaceConfig `mapstructure:"Namespace"`
}

// NamespaceNames 返回所有命名空间名称，供启动日志使用。
func NamespaceNames(namespaces []NamespaceConfig) []string {
	if len(namespaces) == 0 {
		return nil
	}
	result := make([]string, len(namespaces))
	for i, ns := range namespaces {
		result[i] = fmt.Sprintf("%s:%s", ns.Name, ns.Codec)
	}
	return result
}

// EffectiveMaxAge 返回命名空间生效的过期窗口，未设置时回退至全局值；0 表示永不过期。
func (c *Config) EffectiveMaxAge(ns NamespaceConfig) time.Duration {
	if ns.MaxAge != nil {
		return ns.MaxAge.DurationValue()
	}
	return c.Global.DefaultMaxAge.DurationValue()
}

// EffectiveAsyncSave 返回命名空间是否使用后台写入。
func (c *Config) EffectiveAsyncSave(ns NamespaceConfig) bool {
	switch ns.SaveMode {
	case SaveModeSync:
		return false
	case SaveModeDetached:
		return true
	default:
		return c.Global.AsyncSave
	}
}

// EffectiveFactoryPrefix 返回命名空间前缀，默认 <Name>_<Codec>_，使编码切换后不会读到旧格式条目。
func (c *Config) EffectiveFactoryPrefix(ns NamespaceConfig) string {
	if ns.FactoryPrefix != "" {
		return ns.FactoryPrefix
	}
	return fmt.Sprintf("%s_%s_", ns.Name, ns.Codec)
}
