package cron

import (
	"context"
	use_cases "eventplanner/internal/application/use-cases"
	"eventplanner/pkg/config"
	"testing"
	"time"

	"go.uber.org/zap"
)

type probeUseCase struct {
	use_cases.UseCaser
	probes chan struct{}
	panics bool
}

func (u *probeUseCase) ProbeStore(ctx context.Context) {
	if _, ok := ctx.Deadline(); !ok {
		panic("probe must run with a deadline")
	}
	select {
	case u.probes <- struct{}{}:
	default:
	}
	if u.panics {
		panic("boom")
	}
}

func TestSpecFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		conf config.Cron
		want string
	}{
		{config.Cron{Schedule: "*/10 * * * * *", Interval: "@every 1m"}, "*/10 * * * * *"},
		{config.Cron{Interval: "@every 1m"}, "@every 1m"},
		{config.Cron{}, defaultProbeSpec},
	}
	for _, tt := range tests {
		if got := specFor(tt.conf); got != tt.want {
			t.Fatalf("%+v: expected %q, got %q", tt.conf, tt.want, got)
		}
	}
}

func TestRegisterStoreProbeJob_InvalidSpec(t *testing.T) {
	t.Parallel()

	c := NewController(context.Background(), zap.NewNop().Sugar())
	if err := c.RegisterStoreProbeJob(&probeUseCase{}, config.Cron{Schedule: "not a cron"}); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestStoreProbeJob_RunsOnSchedule(t *testing.T) {
	t.Parallel()

	uc := &probeUseCase{probes: make(chan struct{}, 4), panics: true}
	c := NewController(context.Background(), zap.NewNop().Sugar())
	if err := c.RegisterStoreProbeJob(uc, config.Cron{Interval: "@every 1s"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Start()
	defer c.Stop()

	// паника в пробе не роняет планировщик: ждём два запуска
	for i := 0; i < 2; i++ {
		select {
		case <-uc.probes:
		case <-time.After(5 * time.Second):
			t.Fatalf("probe %d did not run", i+1)
		}
	}
}
