package routes

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/objcache/internal/cache"
	"github.com/any-hub/objcache/internal/config"
	"github.com/any-hub/objcache/internal/server"
	"github.com/any-hub/objcache/internal/version"
)

// RegisterDiagnosticsRoutes 暴露 /-/ 诊断接口，供运维查询命名空间配置与磁盘条目状态。
func RegisterDiagnosticsRoutes(app *fiber.App, registry *server.NamespaceRegistry, logger *logrus.Logger) {
	if app == nil || registry == nil || logger == nil {
		return
	}

	app.Get("/-/version", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"version": version.Version, "commit": version.Commit, "full": version.Full()})
	})

	app.Get("/-/namespaces", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"namespaces": encodeNamespaces(registry.List())})
	})

	app.Get("/-/entries/:namespace", func(c fiber.Ctx) error {
		route, ok, err := server.LookupNamespace(c, logger, registry)
		if !ok {
			return err
		}
		entries, err := route.Entries(c.Context())
		if err != nil {
			logger.WithError(err).WithField("namespace", route.Config.Name).Error("cache_list_failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cache_list_failed"})
		}
		return c.JSON(fiber.Map{
			"namespace": route.Config.Name,
			"prefix":    route.CachePrefix(),
			"entries":   encodeEntries(entries, route.MaxAge, time.Now()),
		})
	})

	app.Get("/-/inspect/:namespace/*", func(c fiber.Ctx) error {
		route, ok, err := server.LookupNamespace(c, logger, registry)
		if !ok {
			return err
		}
		key := c.Params("*")
		if key == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "key_required"})
		}
		maxAge, err := server.ParseMaxAge(c.Query("max_age"), route.MaxAge)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_max_age", "detail": err.Error()})
		}
		status, err := route.Inspect(c.Context(), key, maxAge)
		if err != nil {
			logger.WithError(err).WithField("namespace", route.Config.Name).Error("cache_inspect_failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cache_inspect_failed"})
		}
		return c.JSON(encodeStatus(key, maxAge, status))
	})
}

type namespacePayload struct {
	Name          string `json:"name"`
	Codec         string `json:"codec"`
	Prefix        string `json:"prefix"`
	MaxAgeSeconds int64  `json:"max_age_seconds"`
	SaveMode      string `json:"save_mode"`
}

type entryPayload struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	ModTime    time.Time `json:"mod_time"`
	AgeSeconds int64     `json:"age_seconds"`
	State      string    `json:"state"`
}

type statusPayload struct {
	Key           string `json:"key"`
	State         string `json:"state"`
	Path          string `json:"path,omitempty"`
	SizeBytes     int64  `json:"size_bytes,omitempty"`
	AgeSeconds    int64  `json:"age_seconds"`
	MaxAgeSeconds int64  `json:"max_age_seconds"`
}

func encodeNamespaces(routes []*server.NamespaceRoute) []namespacePayload {
	if len(routes) == 0 {
		return nil
	}
	result := make([]namespacePayload, 0, len(routes))
	for _, route := range routes {
		mode := config.SaveModeSync
		if route.AsyncSave() {
			mode = config.SaveModeDetached
		}
		result = append(result, namespacePayload{
			Name:          route.Config.Name,
			Codec:         route.Codec.Name(),
			Prefix:        route.CachePrefix(),
			MaxAgeSeconds: int64(route.MaxAge / time.Second),
			SaveMode:      mode,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func encodeEntries(entries []cache.Entry, maxAge time.Duration, now time.Time) []entryPayload {
	result := make([]entryPayload, 0, len(entries))
	for i := range entries {
		entry := entries[i]
		result = append(result, entryPayload{
			Name:       entry.Locator.FileName(),
			SizeBytes:  entry.SizeBytes,
			ModTime:    entry.ModTime,
			AgeSeconds: int64(entry.Age(now) / time.Second),
			State:      cache.Evaluate(&entry, maxAge, now).String(),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func encodeStatus(key string, maxAge time.Duration, status cache.Status) statusPayload {
	payload := statusPayload{
		Key:           key,
		State:         status.State.String(),
		AgeSeconds:    int64(status.Age / time.Second),
		MaxAgeSeconds: int64(maxAge / time.Second),
	}
	if status.Entry != nil {
		payload.Path = status.Entry.FilePath
		payload.SizeBytes = status.Entry.SizeBytes
	}
	return payload
}
