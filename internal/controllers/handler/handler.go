package handler

import (
	"context"
	"errors"
	"eventplanner/internal/appers"
	"eventplanner/internal/application/common"
	"eventplanner/internal/application/entity"
	use_cases "eventplanner/internal/application/use-cases"
	"eventplanner/pkg/config"
	"eventplanner/pkg/validator"
	"fmt"
	"strings"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const welcomeMessage = "Welcome to the Event Planner API!"

type Handler interface {
	Root(c *fiber.Ctx) error
	Health(c *fiber.Ctx) error
	Ready(c *fiber.Ctx) error
	CreateEvent(c *fiber.Ctx) error
	ListEvents(c *fiber.Ctx) error
	GetEvent(c *fiber.Ctx) error
	UpdateEvent(c *fiber.Ctx) error
	DeleteEvent(c *fiber.Ctx) error
}

type HandlerImpl struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewEventHandler(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *HandlerImpl {
	return &HandlerImpl{
		usecase: usecase,
		logger:  logger,
	}
}

// formatValidationErrors переводит ошибки валидатора в сообщения для клиента
func formatValidationErrors(err error) []string {
	var messages []string
	var validationErrors playgroundvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}
	for _, e := range validationErrors {
		field := e.Field()
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("field '%s' is required", field)
		case "min":
			message = fmt.Sprintf("field '%s' must be at least %s characters long", field, e.Param())
		case "iso8601":
			message = fmt.Sprintf("field '%s' must be an ISO-8601 datetime (e.g. 2025-11-01T14:30:00Z)", field)
		default:
			message = fmt.Sprintf("field '%s' failed validation: %s", field, e.Tag())
		}
		messages = append(messages, message)
	}
	return messages
}

func validationFailed(c *fiber.Ctx, messages []string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(entity.ErrorResponse{
		Detail: "validation failed",
		Errors: messages,
	})
}

// parseBody разбирает и проверяет тело запроса; false означает, что ответ 422 уже отправлен
func (h *HandlerImpl) parseBody(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		h.logger.Warnf("error parsing body: %v", err)
		return false, validationFailed(c, []string{fmt.Sprintf("invalid request body: %v", err)})
	}
	if err := validator.Validate.Struct(dst); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return false, validationFailed(c, formatValidationErrors(err))
	}
	return true, nil
}

// eventID копирует параметр: fiber переиспользует буфер запроса после ответа
func eventID(c *fiber.Ctx) string {
	return strings.Clone(c.Params("id"))
}

func (h *HandlerImpl) fail(c *fiber.Ctx, err error) error {
	var errResp appers.ErrorResp
	if !errors.As(err, &errResp) {
		h.logger.Errorf("%s %s failed: %v", c.Method(), c.Path(), err)
	}
	return appers.SanitizeError(c, err)
}

// Root godoc
// @Summary     Приветствие и версия API
// @Produce     json
// @Success     200 {object} entity.RootResponse
// @tags        Health
// @Router      / [get]
func (h *HandlerImpl) Root(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(entity.RootResponse{
		Message: welcomeMessage,
		Version: common.Version,
	})
}

// Health godoc
// @Summary     Liveness-проба
// @Description Отвечает, пока процесс жив; хранилище не проверяет
// @Produce     json
// @Success     200 {object} entity.HealthCheckResponse
// @tags        Health
// @Router      /health [get]
func (h *HandlerImpl) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(entity.HealthCheckResponse{Status: "ok"})
}

// Ready godoc
// @Summary     Readiness-проба
// @Description Пингует хранилище документов. Kafka на готовность не влияет.
// @Produce     json
// @Success     200 {object} entity.HealthCheckResponse "Хранилище доступно"
// @Failure     503 {object} entity.HealthCheckResponse "Хранилище недоступно"
// @tags        Health
// @Router      /ready [get]
func (h *HandlerImpl) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), config.ProbeTimeout)
	defer cancel()

	storeHealthy, _, err := h.usecase.HealthCheck(ctx)
	if !storeHealthy {
		h.logger.Warnf("readiness check failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(entity.HealthCheckResponse{
			Status: "unavailable",
			Store:  h.usecase.StoreDriver(),
			Error:  "store unavailable",
		})
	}
	return c.Status(fiber.StatusOK).JSON(entity.HealthCheckResponse{
		Status: "ok",
		Store:  h.usecase.StoreDriver(),
	})
}

// CreateEvent godoc
// @Summary     Создание события
// @Description Создает событие; id генерирует сервер
// @Accept      json
// @Produce     json
// @Param       body  body     entity.EventCreateRequest  true  "Данные события"
// @Success     201   {object} entity.Event
// @Failure     422   {object} entity.ErrorResponse
// @Failure     500   {object} entity.ErrorResponse
// @tags        Event
// @Router      /events [post]
func (h *HandlerImpl) CreateEvent(c *fiber.Ctx) error {
	var req entity.EventCreateRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	date, err := validator.ParseTimestamp(req.Date)
	if err != nil {
		return validationFailed(c, []string{err.Error()})
	}

	event, err := h.usecase.CreateEvent(c.UserContext(), entity.EventCreate{
		Title:       req.Title,
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// ListEvents godoc
// @Summary     Список событий
// @Description Все события по возрастанию даты
// @Produce     json
// @Success     200    {array}  entity.Event
// @Failure     500    {object} entity.ErrorResponse
// @tags        Event
// @Router      /events [get]
func (h *HandlerImpl) ListEvents(c *fiber.Ctx) error {
	events, err := h.usecase.ListEvents(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(events)
}

// GetEvent godoc
// @Summary     Получение события
// @Produce     json
// @Param       id   path     string  true  "ID события"
// @Success     200  {object} entity.Event
// @Failure     404  {object} entity.ErrorResponse
// @Failure     500  {object} entity.ErrorResponse
// @tags        Event
// @Router      /events/{id} [get]
func (h *HandlerImpl) GetEvent(c *fiber.Ctx) error {
	event, err := h.usecase.GetEvent(c.UserContext(), eventID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(event)
}

// UpdateEvent godoc
// @Summary     Частичное обновление события
// @Description Меняет только переданные поля; null равнозначен отсутствию поля
// @Accept      json
// @Produce     json
// @Param       id    path     string                     true  "ID события"
// @Param       body  body     entity.EventUpdateRequest  true  "Поля для обновления"
// @Success     200   {object} entity.Event
// @Failure     404   {object} entity.ErrorResponse
// @Failure     422   {object} entity.ErrorResponse
// @Failure     500   {object} entity.ErrorResponse
// @tags        Event
// @Router      /events/{id} [put]
func (h *HandlerImpl) UpdateEvent(c *fiber.Ctx) error {
	var req entity.EventUpdateRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	update := entity.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Date != nil {
		date, err := validator.ParseTimestamp(*req.Date)
		if err != nil {
			return validationFailed(c, []string{err.Error()})
		}
		update.Date = &date
	}

	event, err := h.usecase.UpdateEvent(c.UserContext(), eventID(c), update)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(event)
}

// DeleteEvent godoc
// @Summary     Удаление события
// @Param       id   path     string  true  "ID события"
// @Success     204
// @Failure     404  {object} entity.ErrorResponse
// @Failure     500  {object} entity.ErrorResponse
// @tags        Event
// @Router      /events/{id} [delete]
func (h *HandlerImpl) DeleteEvent(c *fiber.Ctx) error {
	if err := h.usecase.DeleteEvent(c.UserContext(), eventID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}
