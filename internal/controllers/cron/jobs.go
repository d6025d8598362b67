package cron

import (
	"context"
	use_cases "eventplanner/internal/application/use-cases"

	"go.uber.org/zap"
)

// StoreProbeJob - периодическая проверка хранилища документов
type StoreProbeJob struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewStoreProbeJob(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *StoreProbeJob {
	return &StoreProbeJob{
		usecase: usecase,
		logger:  logger,
	}
}

func (j *StoreProbeJob) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Errorf("Паника при проверке хранилища: %v", r)
		}
	}()

	j.usecase.ProbeStore(ctx)
}
