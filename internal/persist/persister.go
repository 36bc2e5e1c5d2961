package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/objcache/internal/cache"
	"github.com/any-hub/objcache/internal/codec"
	"github.com/any-hub/objcache/internal/logging"
)

// Options 汇总 Persister 的依赖，Store 与 Codec 必填，其余字段有默认值。
type Options struct {
	Store    cache.Store
	Codec    codec.Codec
	Resolver cache.Resolver

	// FactoryPrefix 拼接在 Resolver 前缀之前，用于隔离不同编码/工厂配置产生的同键条目。
	FactoryPrefix string

	// AsyncSave 为 true 时 Save 通过 Dispatcher 后台写入并立即返回。
	AsyncSave bool

	// Dispatcher 为空时 Persister 在首次后台写入时自建一个，并由 Close 负责排空。
	Dispatcher *Dispatcher

	Logger logrus.FieldLogger
	Now    func() time.Time
}

// Persister 负责单一类型 T 的缓存条目读写，每个 T 一个实例，实例之间仅共享文件系统。
type Persister[T any] struct {
	store         cache.Store
	codec         codec.Codec
	resolver      cache.Resolver
	factoryPrefix string
	async         atomic.Bool
	dispatcher    *Dispatcher
	ownDispatcher sync.Once
	owned         atomic.Pointer[Dispatcher]
	logger        logrus.FieldLogger
	now           func() time.Time
}

// New 校验依赖并构建 Persister。
func New[T any](opts Options) (*Persister[T], error) {
	if opts.Store == nil {
		return nil, errors.New("cache store is required")
	}
	if opts.Codec == nil {
		return nil, errors.New("codec is required")
	}
	if strings.ContainsAny(opts.FactoryPrefix, `/\`) {
		return nil, fmt.Errorf("invalid factory prefix: %q", opts.FactoryPrefix)
	}

	p := &Persister[T]{
		store:         opts.Store,
		codec:         opts.Codec,
		resolver:      opts.Resolver,
		factoryPrefix: opts.FactoryPrefix,
		dispatcher:    opts.Dispatcher,
		logger:        opts.Logger,
		now:           opts.Now,
	}
	if p.resolver == nil {
		p.resolver = cache.NewKeyResolver(cache.TypePrefix[T]())
	}
	if p.logger == nil {
		p.logger = logrus.StandardLogger()
	}
	if p.now == nil {
		p.now = time.Now
	}
	p.async.Store(opts.AsyncSave)
	return p, nil
}

// Close 排空并关闭 Persister 自建的 Dispatcher；共享的 Dispatcher 由其创建者关闭。
func (p *Persister[T]) Close() {
	if d := p.owned.Load(); d != nil {
		d.Close()
	}
}

func (p *Persister[T]) detachedDispatcher() *Dispatcher {
	if p.dispatcher != nil {
		return p.dispatcher
	}
	p.ownDispatcher.Do(func() {
		p.owned.Store(NewDispatcher(0, 0))
	})
	return p.owned.Load()
}

// CachePrefix 返回 FactoryPrefix + Resolver 默认前缀。
func (p *Persister[T]) CachePrefix() string {
	return p.factoryPrefix + p.resolver.NamespacePrefix()
}

// Codec 返回当前使用的编码器。
func (p *Persister[T]) Codec() codec.Codec {
	return p.codec
}

// AsyncSaveEnabled 报告 Save 是否以后台模式执行。
func (p *Persister[T]) AsyncSaveEnabled() bool {
	return p.async.Load()
}

// SetAsyncSaveEnabled 在运行时切换同步/后台写入模式。
func (p *Persister[T]) SetAsyncSaveEnabled(enabled bool) {
	p.async.Store(enabled)
}

// Load 返回 key 对应且不早于 maxAge 的缓存值；maxAge 为 0 表示永不过期。
// 缺失或过期返回 ok=false 且 err=nil；其余失败包装为 *LoadError。
func (p *Persister[T]) Load(ctx context.Context, key any, maxAge time.Duration) (T, bool, error) {
	var zero T
	label := cache.Label(key)

	locator, err := p.locate(key)
	if err != nil {
		return zero, false, &LoadError{Key: label, Err: err}
	}
	logger := p.entryLogger(label, locator)

	entry, err := p.store.Stat(ctx, locator)
	if errors.Is(err, cache.ErrNotFound) {
		logger.Debug("cache_miss")
		return zero, false, nil
	}
	if err != nil {
		return zero, false, &LoadError{Key: label, Err: err}
	}

	now := p.now()
	if cache.Evaluate(entry, maxAge, now) == cache.StateStale {
		logger.WithField("expired_for", (entry.Age(now) - maxAge).String()).Debug("cache_expired")
		return zero, false, nil
	}

	value, err := p.read(ctx, locator)
	if errors.Is(err, cache.ErrNotFound) {
		// 文件在 Stat 与 Open 之间被外部删除，按缺失处理。
		logger.Warn("cache_entry_vanished")
		return zero, false, nil
	}
	if err != nil {
		return zero, false, &LoadError{Key: label, Err: err}
	}
	return value, true, nil
}

// Save 写入 value 并原样返回它，便于链式调用。
// 后台模式下立即返回，失败仅记录日志，调用方无法感知；队列已满时本次写入被丢弃。
func (p *Persister[T]) Save(ctx context.Context, value T, key any) (T, error) {
	label := cache.Label(key)
	if p.AsyncSaveEnabled() {
		p.saveDetached(ctx, value, key, label)
		return value, nil
	}

	if err := p.write(ctx, value, key); err != nil {
		return value, &SaveError{Key: label, Err: err}
	}
	return value, nil
}

// Remove 删除 key 对应的缓存文件，文件不存在不视为错误。
func (p *Persister[T]) Remove(ctx context.Context, key any) error {
	locator, err := p.locate(key)
	if err != nil {
		return err
	}
	return p.store.Remove(ctx, locator)
}

// Inspect 只读取元数据报告条目状态，不做解码。
func (p *Persister[T]) Inspect(ctx context.Context, key any, maxAge time.Duration) (cache.Status, error) {
	locator, err := p.locate(key)
	if err != nil {
		return cache.Status{}, err
	}

	entry, err := p.store.Stat(ctx, locator)
	if errors.Is(err, cache.ErrNotFound) {
		return cache.Status{State: cache.StateAbsent}, nil
	}
	if err != nil {
		return cache.Status{}, err
	}

	now := p.now()
	return cache.Status{
		State: cache.Evaluate(entry, maxAge, now),
		Entry: entry,
		Age:   entry.Age(now),
	}, nil
}

// Entries 列出当前前缀下的所有条目（包括已过期的）。
func (p *Persister[T]) Entries(ctx context.Context) ([]cache.Entry, error) {
	return p.store.List(ctx, p.CachePrefix())
}

func (p *Persister[T]) locate(key any) (cache.Locator, error) {
	return p.resolver.Resolve(p.CachePrefix(), key)
}

func (p *Persister[T]) read(ctx context.Context, locator cache.Locator) (T, error) {
	var value T

	result, err := p.store.Get(ctx, locator)
	if err != nil {
		return value, err
	}
	defer result.Reader.Close()

	body, err := io.ReadAll(result.Reader)
	if err != nil {
		return value, fmt.Errorf("read cache file: %w", err)
	}

	payload := codec.Payload{ContentType: p.codec.ContentType(), Body: body}
	if err := p.codec.Decode(payload, &value); err != nil {
		return value, err
	}
	return value, nil
}

// write 先编码再打开文件，编码失败不会截断已有条目。
func (p *Persister[T]) write(ctx context.Context, value T, key any) (err error) {
	locator, err := p.locate(key)
	if err != nil {
		return err
	}

	payload, err := p.codec.Encode(value)
	if err != nil {
		return err
	}

	w, err := p.store.Create(ctx, locator)
	if err != nil {
		return fmt.Errorf("open cache file: %w", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close cache file: %w", closeErr)
		}
	}()

	if _, err := payload.WriteTo(w); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

func (p *Persister[T]) saveDetached(ctx context.Context, value T, key any, label string) {
	jobID := uuid.NewString()
	detachedCtx := context.WithoutCancel(ctx)

	path := ""
	if locator, err := p.locate(key); err == nil {
		path = filepath.Join(p.store.BasePath(), locator.FileName())
	}
	logger := p.logger.WithFields(logging.EntryFields(p.CachePrefix(), label, path)).WithField("job_id", jobID)

	err := p.detachedDispatcher().Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				logger.WithField("panic", r).Error("cache_async_save_panic")
			}
		}()

		if err := p.write(detachedCtx, value, key); err != nil {
			logger.WithError(err).Error("cache_async_save_failed")
			return
		}
		logger.Debug("cache_async_saved")
	})
	if err != nil {
		logger.WithError(err).Error("cache_async_save_rejected")
	}
}

func (p *Persister[T]) entryLogger(label string, locator cache.Locator) logrus.FieldLogger {
	path := filepath.Join(p.store.BasePath(), locator.FileName())
	return p.logger.WithFields(logging.EntryFields(p.CachePrefix(), label, path))
}
