package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

type Job interface {
	Run(ctx context.Context)
}

type Scheduler struct {
	c       *cron.Cron
	ctx     context.Context
	timeout time.Duration
}

// NewScheduler понимает cron с секундами и дескрипторы (@every, @hourly, ...).
// Запуск задачи пропускается, пока предыдущий ещё идёт.
func NewScheduler(ctx context.Context, timeout time.Duration) *Scheduler {
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.Second|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{c: c, ctx: ctx, timeout: timeout}
}

func (s *Scheduler) Add(spec string, job Job) (cron.EntryID, error) {
	return s.c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		job.Run(ctx)
	})
}

func (s *Scheduler) Start() {
	s.c.Start()
}

func (s *Scheduler) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
}
