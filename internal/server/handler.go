package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/objcache/internal/codec"
	"github.com/any-hub/objcache/internal/config"
	"github.com/any-hub/objcache/internal/logging"
	"github.com/any-hub/objcache/internal/persist"
)

const headerCacheHit = "X-Objcache-Hit"

type cacheHandler struct {
	logger   *logrus.Logger
	registry *NamespaceRegistry
}

func (h *cacheHandler) get(c fiber.Ctx) error {
	route, ok, err := LookupNamespace(c, h.logger, h.registry)
	if !ok {
		return err
	}
	key, ok, err := requireKey(c)
	if !ok {
		return err
	}
	maxAge, err := ParseMaxAge(c.Query("max_age"), route.MaxAge)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_max_age", "detail": err.Error()})
	}

	ctx := c.Context()
	var (
		hit     bool
		loadErr error
		doc     persist.Document
		blob    []byte
	)
	if route.IsRaw() {
		blob, hit, loadErr = route.Blobs.Load(ctx, key, maxAge)
	} else {
		doc, hit, loadErr = route.Documents.Load(ctx, key, maxAge)
	}

	logger := h.requestLogger(c, route, key, hit)
	if loadErr != nil {
		logger.WithError(loadErr).Error("cache_load_failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cache_load_failed"})
	}

	c.Set(headerCacheHit, boolHeader(hit))
	if !hit {
		logger.Debug("cache_request")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cache_miss"})
	}

	logger.Info("cache_request")
	if route.IsRaw() {
		c.Set(fiber.HeaderContentType, route.Codec.ContentType())
		return c.Send(blob)
	}
	return c.JSON(doc)
}

func (h *cacheHandler) put(c fiber.Ctx) error {
	route, ok, err := LookupNamespace(c, h.logger, h.registry)
	if !ok {
		return err
	}
	key, ok, err := requireKey(c)
	if !ok {
		return err
	}

	ctx := c.Context()
	logger := h.requestLogger(c, route, key, false)

	if route.IsRaw() {
		// fasthttp 复用请求缓冲区，后台写入前必须复制。
		body := append([]byte(nil), c.Body()...)
		saved, err := route.Blobs.Save(ctx, body, key)
		if err != nil {
			logger.WithError(err).Error("cache_save_failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cache_save_failed"})
		}
		logger.Info("cache_stored")
		c.Set(fiber.HeaderContentType, route.Codec.ContentType())
		return c.Status(fiber.StatusCreated).Send(saved)
	}

	doc, err := decodeDocument(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_document", "detail": err.Error()})
	}
	saved, err := route.Documents.Save(ctx, doc, key)
	if err != nil {
		logger.WithError(err).Error("cache_save_failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cache_save_failed"})
	}
	logger.Info("cache_stored")
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (h *cacheHandler) remove(c fiber.Ctx) error {
	route, ok, err := LookupNamespace(c, h.logger, h.registry)
	if !ok {
		return err
	}
	key, ok, err := requireKey(c)
	if !ok {
		return err
	}

	if err := route.Remove(c.Context(), key); err != nil {
		h.requestLogger(c, route, key, false).WithError(err).Error("cache_remove_failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cache_remove_failed"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *cacheHandler) requestLogger(c fiber.Ctx, route *NamespaceRoute, key string, hit bool) *logrus.Entry {
	return h.logger.WithFields(logging.RequestFields(route.Config.Name, key, RequestID(c), hit))
}

// requireKey 读取通配段作为缓存键；为空时写出 400 key_required。
func requireKey(c fiber.Ctx) (string, bool, error) {
	key := c.Params("*")
	if key != "" {
		return key, true, nil
	}
	return "", false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "key_required"})
}

// ParseMaxAge 解析 ?max_age= 覆盖值，接受 Go Duration 或纯秒数；为空时使用 fallback。
func ParseMaxAge(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	var d config.Duration
	if err := d.UnmarshalText([]byte(raw)); err != nil {
		return 0, err
	}
	if d.DurationValue() < 0 {
		return 0, errors.New("max_age must not be negative")
	}
	return d.DurationValue(), nil
}

func decodeDocument(body []byte) (persist.Document, error) {
	var doc persist.Document
	if err := (codec.JSON{}).Decode(codec.Payload{Body: body}, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document must be a JSON object")
	}
	return doc, nil
}

func boolHeader(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
