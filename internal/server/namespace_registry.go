package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/objcache/internal/cache"
	"github.com/any-hub/objcache/internal/codec"
	"github.com/any-hub/objcache/internal/config"
	"github.com/any-hub/objcache/internal/persist"
)

// NamespaceRoute 将命名空间配置与派生属性（生效 MaxAge、编码器、Persister）聚合在一起，
// 供 HTTP 层直接复用。raw 编码的命名空间按字节存取，其余按 Document 存取。
type NamespaceRoute struct {
	// Config 是用户在 config.toml 中声明的命名空间字段副本。
	Config config.NamespaceConfig
	// MaxAge 是对当前命名空间生效的过期窗口，0 表示永不过期。
	MaxAge time.Duration
	Codec  codec.Codec
	// Documents/Blobs 仅有一个非空，取决于 Codec 是否为 raw。
	Documents *persist.Persister[persist.Document]
	Blobs     *persist.Persister[[]byte]
}

// IsRaw 报告命名空间是否以原始字节保存条目。
func (r *NamespaceRoute) IsRaw() bool {
	return r.Blobs != nil
}

// CachePrefix 返回命名空间在缓存目录中的文件名前缀。
func (r *NamespaceRoute) CachePrefix() string {
	if r.IsRaw() {
		return r.Blobs.CachePrefix()
	}
	return r.Documents.CachePrefix()
}

// AsyncSave 报告当前写入模式。
func (r *NamespaceRoute) AsyncSave() bool {
	if r.IsRaw() {
		return r.Blobs.AsyncSaveEnabled()
	}
	return r.Documents.AsyncSaveEnabled()
}

func (r *NamespaceRoute) Remove(ctx context.Context, key string) error {
	if r.IsRaw() {
		return r.Blobs.Remove(ctx, key)
	}
	return r.Documents.Remove(ctx, key)
}

func (r *NamespaceRoute) Inspect(ctx context.Context, key string, maxAge time.Duration) (cache.Status, error) {
	if r.IsRaw() {
		return r.Blobs.Inspect(ctx, key, maxAge)
	}
	return r.Documents.Inspect(ctx, key, maxAge)
}

func (r *NamespaceRoute) Entries(ctx context.Context) ([]cache.Entry, error) {
	if r.IsRaw() {
		return r.Blobs.Entries(ctx)
	}
	return r.Documents.Entries(ctx)
}

// NamespaceRegistry 提供命名空间名称到 NamespaceRoute 的查询能力。
type NamespaceRegistry struct {
	routes  map[string]*NamespaceRoute
	ordered []*NamespaceRoute
}

// RegistryOptions 描述构建 Persister 所需的共享依赖，所有命名空间共用同一个 Store 与 Dispatcher。
type RegistryOptions struct {
	Store      cache.Store
	Dispatcher *persist.Dispatcher
	Logger     logrus.FieldLogger
	Now        func() time.Time
}

// NewNamespaceRegistry 根据配置为每个命名空间构建 Persister。调用方应在启动阶段创建一次并复用。
func NewNamespaceRegistry(cfg *config.Config, opts RegistryOptions) (*NamespaceRegistry, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if opts.Store == nil {
		return nil, errors.New("cache store is required")
	}

	registry := &NamespaceRegistry{
		routes: make(map[string]*NamespaceRoute, len(cfg.Namespaces)),
	}

	for _, ns := range cfg.Namespaces {
		if _, exists := registry.routes[ns.Name]; exists {
			return nil, fmt.Errorf("duplicate namespace %s", ns.Name)
		}
		route, err := buildNamespaceRoute(cfg, ns, opts)
		if err != nil {
			return nil, err
		}
		registry.routes[ns.Name] = route
		registry.ordered = append(registry.ordered, route)
	}

	return registry, nil
}

// Lookup 按名称查找命名空间。
func (r *NamespaceRegistry) Lookup(name string) (*NamespaceRoute, bool) {
	if r == nil {
		return nil, false
	}
	route, ok := r.routes[name]
	return route, ok
}

// List 返回按配置顺序排列的命名空间，用于诊断输出。
func (r *NamespaceRegistry) List() []*NamespaceRoute {
	if r == nil || len(r.ordered) == 0 {
		return nil
	}
	return append([]*NamespaceRoute(nil), r.ordered...)
}

func buildNamespaceRoute(cfg *config.Config, ns config.NamespaceConfig, opts RegistryOptions) (*NamespaceRoute, error) {
	c, ok := codec.Resolve(ns.Codec)
	if !ok {
		return nil, fmt.Errorf("namespace %s: codec %s is not registered", ns.Name, ns.Codec)
	}

	logger := opts.Logger
	if logger != nil {
		logger = logger.WithField("namespace", ns.Name)
	}
	persistOpts := persist.Options{
		Store:         opts.Store,
		Codec:         c,
		FactoryPrefix: cfg.EffectiveFactoryPrefix(ns),
		AsyncSave:     cfg.EffectiveAsyncSave(ns),
		Dispatcher:    opts.Dispatcher,
		Logger:        logger,
		Now:           opts.Now,
	}

	route := &NamespaceRoute{
		Config: ns,
		MaxAge: cfg.EffectiveMaxAge(ns),
		Codec:  c,
	}

	var err error
	if c.Name() == (codec.Raw{}).Name() {
		route.Blobs, err = persist.New[[]byte](persistOpts)
	} else {
		route.Documents, err = persist.New[persist.Document](persistOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("namespace %s: %w", ns.Name, err)
	}
	return route, nil
}
