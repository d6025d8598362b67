package cron

import (
	"context"
	use_cases "eventplanner/internal/application/use-cases"
	"eventplanner/pkg/config"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultProbeSpec = "@every 30s"
	jobTimeout       = time.Minute
)

type Controller struct {
	scheduler *Scheduler
	logger    *zap.SugaredLogger
}

func NewController(ctx context.Context, logger *zap.SugaredLogger) *Controller {
	return &Controller{
		scheduler: NewScheduler(ctx, jobTimeout),
		logger:    logger,
	}
}

// RegisterStoreProbeJob регистрирует пробу хранилища. Schedule (cron с секундами,
// например "*/30 * * * * *") приоритетнее Interval ("@every 30s").
func (c *Controller) RegisterStoreProbeJob(usecase use_cases.UseCaser, conf config.Cron) error {
	job := NewStoreProbeJob(usecase, c.logger)

	spec := specFor(conf)
	if conf.Schedule == "" && conf.Interval == "" {
		c.logger.Warnf("Расписание не указано, используется интервал по умолчанию: %s", spec)
	}

	entryID, err := c.scheduler.Add(spec, job)
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать пробу хранилища (%q): %w", spec, err)
	}

	c.logger.Infof("Проба хранилища зарегистрирована с ID: %d, расписание: %s", entryID, spec)
	return nil
}

func specFor(conf config.Cron) string {
	switch {
	case conf.Schedule != "":
		return conf.Schedule
	case conf.Interval != "":
		return conf.Interval
	default:
		return defaultProbeSpec
	}
}

func (c *Controller) Start() {
	c.logger.Info("Запуск планировщика cron задач")
	c.scheduler.Start()
}

func (c *Controller) Stop() {
	c.logger.Info("Остановка планировщика cron задач")
	c.scheduler.Stop()
	c.logger.Info("Планировщик cron задач остановлен")
}
