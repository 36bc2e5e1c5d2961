package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AppOptions controls how the Fiber application should behave on a specific port.
type AppOptions struct {
	Logger     *logrus.Logger
	Registry   *NamespaceRegistry
	ListenPort int
}

const contextKeyRequestID = "_objcache_request_id"

// NewApp builds a Fiber application exposing the document cache under
// /cache/:namespace/* with request-id middleware and structured errors.
// Diagnostics under /-/ are registered separately by the routes package.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("namespace registry is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	// Immutable: 后台写入在 handler 返回后才解析键，参数不能引用 fasthttp 缓冲区。
	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		Immutable:     true,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	h := &cacheHandler{logger: opts.Logger, registry: opts.Registry}
	app.Get("/cache/:namespace/*", h.get)
	app.Put("/cache/:namespace/*", h.put)
	app.Delete("/cache/:namespace/*", h.remove)

	return app, nil
}

func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := strings.TrimSpace(c.Get("X-Request-ID"))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// LookupNamespace 解析 :namespace 参数；未注册时写出 404 namespace_unmapped 并返回 ok=false。
func LookupNamespace(c fiber.Ctx, logger logrus.FieldLogger, registry *NamespaceRegistry) (*NamespaceRoute, bool, error) {
	name := c.Params("namespace")
	route, ok := registry.Lookup(name)
	if ok {
		return route, true, nil
	}

	logger.WithFields(logrus.Fields{
		"action":     "namespace_lookup",
		"namespace":  name,
		"request_id": RequestID(c),
	}).Warn("namespace unmapped")

	return nil, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "namespace_unmapped",
	})
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
