package codec

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var globalRegistry = newRegistry()

func init() {
	globalRegistry.mustRegister(JSON{})
	globalRegistry.mustRegister(YAML{})
	globalRegistry.mustRegister(TOML{})
	globalRegistry.mustRegister(Raw{})
}

type registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

func newRegistry() *registry {
	return &registry{codecs: make(map[string]Codec)}
}

// Register 将编码器加入全局注册表，重复键会返回错误。
func Register(c Codec) error {
	return globalRegistry.register(c)
}

// MustRegister 在注册失败时 panic，适合 init() 中调用。
func MustRegister(c Codec) {
	globalRegistry.mustRegister(c)
}

// Resolve 按名称（大小写不敏感）查找编码器。
func Resolve(name string) (Codec, bool) {
	return globalRegistry.resolve(name)
}

// List 返回按名称排序的编码器列表。
func List() []Codec {
	return globalRegistry.list()
}

// Names 返回所有已注册编码器的名称，供配置校验提示使用。
func Names() []string {
	items := List()
	result := make([]string, len(items))
	for i, c := range items {
		result[i] = c.Name()
	}
	return result
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *registry) register(c Codec) error {
	if c == nil {
		return fmt.Errorf("codec is required")
	}
	key := normalizeName(c.Name())
	if key == "" {
		return fmt.Errorf("codec name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.codecs[key]; exists {
		return fmt.Errorf("codec %s already registered", key)
	}
	r.codecs[key] = c
	return nil
}

func (r *registry) mustRegister(c Codec) {
	if err := r.register(c); err != nil {
		panic(err)
	}
}

func (r *registry) resolve(name string) (Codec, bool) {
	key := normalizeName(name)
	if key == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.codecs[key]
	return c, ok
}

func (r *registry) list() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.codecs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.codecs))
	for key := range r.codecs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]Codec, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.codecs[key])
	}
	return result
}
