package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	handler  Handler
	app      *fiber.App
	gatherer prometheus.Gatherer
	logger   *zap.SugaredLogger
}

func NewRouter(handler Handler, app *fiber.App, gatherer prometheus.Gatherer, logger *zap.SugaredLogger) *Router {
	return &Router{
		logger:   logger,
		app:      app,
		gatherer: gatherer,
		handler:  handler,
	}
}

func (r *Router) RegisterRouter() {
	r.app.Get("/", r.handler.Root)
	r.app.Get("/health", r.handler.Health)
	r.app.Get("/ready", r.handler.Ready)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	r.app.Get("/swagger/*", swagger.New(swagger.Config{
		DeepLinking: false,
		URL:         "/swagger/doc.json",
	}))

	events := r.app.Group("/events")
	events.Post("/", r.handler.CreateEvent)
	events.Get("/", r.handler.ListEvents)
	events.Get("/:id", r.handler.GetEvent)
	events.Put("/:id", r.handler.UpdateEvent)
	events.Delete("/:id", r.handler.DeleteEvent)

	r.logger.Debugf("routes registered: %d", len(r.app.GetRoutes(true)))
}
