package use_cases

import (
	"context"
	"eventplanner/internal/application/entity"
	"eventplanner/internal/application/service"
	"eventplanner/pkg/config"

	"go.uber.org/zap"
)

type UseCaser interface {
	CreateEvent(ctx context.Context, in entity.EventCreate) (*entity.Event, error)
	ListEvents(ctx context.Context) ([]*entity.Event, error)
	GetEvent(ctx context.Context, id string) (*entity.Event, error)
	UpdateEvent(ctx context.Context, id string, in entity.EventUpdate) (*entity.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ProbeStore(ctx context.Context)
	RunRelay(ctx context.Context)

	HealthCheck(ctx context.Context) (storeHealthy bool, kafkaHealthy bool, err error)
	StoreDriver() string
}

type UseCase struct {
	service service.Service
	logger  *zap.SugaredLogger
	conf    *config.Config
	// последнее состояние пробы, чтобы логировать только переходы
	storeUp *bool
}

func NewUseCase(service service.Service, logger *zap.SugaredLogger, conf *config.Config) *UseCase {
	return &UseCase{
		service: service,
		logger:  logger,
		conf:    conf,
	}
}

func (u *UseCase) HealthCheck(ctx context.Context) (storeHealthy bool, kafkaHealthy bool, err error) {
	return u.service.HealthCheck(ctx)
}

func (u *UseCase) StoreDriver() string {
	return u.conf.Store.Driver
}

func (u *UseCase) CreateEvent(ctx context.Context, in entity.EventCreate) (*entity.Event, error) {
	u.logger.Debugf("[title: %s] CreateEvent started", in.Title)
	return u.service.CreateEvent(ctx, in)
}

func (u *UseCase) ListEvents(ctx context.Context) ([]*entity.Event, error) {
	u.logger.Debug("ListEvents started")
	return u.service.ListEvents(ctx)
}

func (u *UseCase) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	u.logger.Debugf("[event: %s] GetEvent started", id)
	return u.service.GetEvent(ctx, id)
}

func (u *UseCase) UpdateEvent(ctx context.Context, id string, in entity.EventUpdate) (*entity.Event, error) {
	u.logger.Debugf("[event: %s] UpdateEvent started", id)
	return u.service.UpdateEvent(ctx, id, in)
}

func (u *UseCase) DeleteEvent(ctx context.Context, id string) error {
	u.logger.Debugf("[event: %s] DeleteEvent started", id)
	return u.service.DeleteEvent(ctx, id)
}

// ProbeStore вызывается по расписанию cron. Джобы не пересекаются (SkipIfStillRunning),
// поэтому storeUp без мьютекса.
func (u *UseCase) ProbeStore(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, config.ProbeTimeout)
	defer cancel()

	err := u.service.ProbeStore(ctx)
	up := err == nil

	switch {
	case u.storeUp != nil && *u.storeUp == up:
		if !up {
			u.logger.Debugf("store %s still unavailable: %v", u.conf.Store.Driver, err)
		}
	case up:
		u.logger.Infof("store %s is available", u.conf.Store.Driver)
	default:
		u.logger.Errorf("store %s is unavailable: %v", u.conf.Store.Driver, err)
	}
	u.storeUp = &up
}

func (u *UseCase) RunRelay(ctx context.Context) {
	u.logger.Debug("relay started")
	u.service.RelayEventRun(ctx)
}
