package service

import (
	"context"
	"errors"
	"eventplanner/internal/appers"
	"eventplanner/internal/application/common"
	"eventplanner/internal/application/entity"
	"eventplanner/internal/application/mapper"
	"eventplanner/internal/application/repo"
	"eventplanner/internal/transport/producer"
	"eventplanner/pkg/config"
	"eventplanner/pkg/docstore"
	"eventplanner/pkg/metrics"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Service interface {
	CreateEvent(ctx context.Context, in entity.EventCreate) (*entity.Event, error)
	ListEvents(ctx context.Context) ([]*entity.Event, error)
	GetEvent(ctx context.Context, id string) (*entity.Event, error)
	UpdateEvent(ctx context.Context, id string, in entity.EventUpdate) (*entity.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	RelayEventRun(ctx context.Context)

	HealthCheck(ctx context.Context) (storeHealthy bool, kafkaHealthy bool, err error)
	ProbeStore(ctx context.Context) error
}

type ServiceImpl struct {
	repo          repo.Repo
	kafkaProducer producer.Producer
	logger        *zap.SugaredLogger
	metrics       *metrics.Metrics
	cfg           *config.RelayConfig
	notifications chan entity.Notification
	now           func() time.Time
}

// NewService собирает сервис событий. kafkaProducer может быть nil: тогда уведомления
// не публикуются.
func NewService(repo repo.Repo, kafkaProducer producer.Producer, logger *zap.SugaredLogger, m *metrics.Metrics, cfg *config.RelayConfig) *ServiceImpl {
	s := &ServiceImpl{
		repo:          repo,
		kafkaProducer: kafkaProducer,
		logger:        logger,
		metrics:       m,
		cfg:           cfg,
		now:           time.Now,
	}
	if kafkaProducer != nil {
		size := cfg.BufferSize
		if size < 1 {
			size = 1
		}
		s.notifications = make(chan entity.Notification, size)
	}
	return s
}

// HealthCheck проверяет хранилище и, если настроена, Kafka
func (s *ServiceImpl) HealthCheck(ctx context.Context) (storeHealthy bool, kafkaHealthy bool, err error) {
	storeErr := s.repo.HealthCheck(ctx)
	storeHealthy = storeErr == nil

	if s.kafkaProducer == nil {
		return storeHealthy, false, storeErr
	}

	kafkaErr := s.kafkaProducer.HealthCheck(ctx)
	kafkaHealthy = kafkaErr == nil
	if kafkaErr != nil {
		s.logger.Warnf("kafka health check failed: %v", kafkaErr)
	}

	// готовность определяется хранилищем, Kafka только best-effort
	return storeHealthy, kafkaHealthy, storeErr
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, in entity.EventCreate) (*entity.Event, error) {
	id, err := common.NewEventID()
	if err != nil {
		s.logger.Errorf("failed to generate event id: %v", err)
		return nil, fmt.Errorf("generate event id: %w", err)
	}
	s.logger.Debugf("[event: %s] CreateEvent started", id)

	if err := s.repo.SetEvent(ctx, id, mapper.ToDocument(in)); err != nil {
		return nil, err
	}

	// createdAt знает только хранилище, ответ собираем из входных данных
	event := &entity.Event{
		ID:          id,
		Title:       in.Title,
		Date:        in.Date.UTC(),
		Description: in.Description,
	}
	s.notify(entity.EventCreated, id, event)
	return event, nil
}

func (s *ServiceImpl) ListEvents(ctx context.Context) ([]*entity.Event, error) {
	s.logger.Debug("ListEvents started")

	snaps, err := s.repo.ListEventsOrdered(ctx, mapper.FieldDate)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.Warnf("ordering by %s unavailable, falling back to unordered scan: %v", mapper.FieldDate, err)
		s.metrics.Store.OrderingFallbacksTotal.Inc()

		snaps, err = s.repo.ListEvents(ctx)
		if err != nil {
			return nil, err
		}
	}

	events := make([]*entity.Event, 0, len(snaps))
	for _, snap := range snaps {
		event, err := mapper.ToEvent(snap)
		if err != nil {
			// одна битая запись ломает весь список, молча не пропускаем
			s.logger.Errorf("[event: %s] cannot convert stored document: %v", snap.ID, err)
			return nil, fmt.Errorf("list events: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *ServiceImpl) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	s.logger.Debugf("[event: %s] GetEvent started", id)

	snap, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toEvent(snap)
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, id string, in entity.EventUpdate) (*entity.Event, error) {
	s.logger.Debugf("[event: %s] UpdateEvent started", id)

	current, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := mapper.ToUpdateFields(in)
	if len(fields) == 0 {
		s.logger.Debugf("[event: %s] no fields to update", id)
		return current, nil
	}

	if err := s.repo.UpdateEvent(ctx, id, fields); err != nil {
		return nil, s.notFoundOr(err)
	}

	updated, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(entity.EventUpdated, id, updated)
	return updated, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	s.logger.Debugf("[event: %s] DeleteEvent started", id)

	snap, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if snap == nil || !snap.Exists {
		return appers.ErrEventNotFound
	}

	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.notify(entity.EventDeleted, id, nil)
	return nil
}

// ProbeStore пингует хранилище и выставляет gauge store_up
func (s *ServiceImpl) ProbeStore(ctx context.Context) error {
	err := s.repo.HealthCheck(ctx)
	if err != nil {
		s.metrics.Store.Up.Set(0)
		return err
	}
	s.metrics.Store.Up.Set(1)
	return nil
}

func (s *ServiceImpl) toEvent(snap *docstore.Snapshot) (*entity.Event, error) {
	event, err := mapper.ToEvent(snap)
	if err != nil && !errors.Is(err, appers.ErrEventNotFound) {
		s.logger.Errorf("[event: %s] cannot convert stored document: %v", snap.ID, err)
	}
	return event, err
}

func (s *ServiceImpl) notFoundOr(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return appers.ErrEventNotFound
	}
	return err
}
