package httpserver

import (
	"errors"
	"eventplanner/pkg/config"
	"eventplanner/pkg/metrics"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func NewFiber(conf config.Config, m *metrics.Metrics) *fiber.App {
	app := fiber.New(
		fiber.Config{
			ReadBufferSize:        1024 * 100,
			BodyLimit:             conf.Server.BodyLimit,
			DisableStartupMessage: true,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				code := fiber.StatusInternalServerError
				message := "internal server error"

				// 404/405 и прочие ошибки самого fiber отдаём с их кодом
				var fe *fiber.Error
				if errors.As(err, &fe) {
					code = fe.Code
					message = fe.Message
				}
				return c.Status(code).JSON(fiber.Map{
					"detail": message,
				})
			},
		},
	)

	origins := conf.Server.Origins()
	app.Use(
		cors.New(cors.Config{
			AllowOrigins: strings.Join(origins, ","),
			AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
			// пустой AllowHeaders отражает заголовки из preflight
			AllowHeaders: "",
			// fiber запрещает credentials вместе с "*", а пустой список означает "*"
			AllowCredentials: len(origins) > 0 && !slices.Contains(origins, "*"),
		}),
		recover.New(recover.Config{
			EnableStackTrace: true,
		}),
		logger.New(),
	)

	// Prometheus middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// путь берём из роута, чтобы id не раздували кардинальность
		path := c.Route().Path
		if status == fiber.StatusNotFound && err != nil {
			path = "unmatched"
		}
		statusStr := strconv.Itoa(status)
		method := strings.ToUpper(c.Method())
		m.API.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.API.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(start).Seconds())
		return err
	})

	return app
}
