package common

import (
	"context"
	"encoding/hex"
	"math/rand"
	"time"

	"github.com/gofrs/uuid"
)

// Version версия API, отдаётся в GET /
const Version = "0.3.1"

// NewEventID возвращает случайный UUIDv4 в виде 32 hex-символов без дефисов
func NewEventID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(id.Bytes()), nil
}

func NextBackoffWithJitter(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}

	base := time.Second << attempts

	limit := 30 * time.Second
	if base > limit {
		base = limit
	}

	jitter := time.Duration(rand.Int63n(int64(base / 2)))

	return base/2 + jitter
}

func SleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
