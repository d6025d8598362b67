package repo

import (
	"context"
	"errors"
	"eventplanner/pkg/docstore"
	"eventplanner/pkg/metrics"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

type Repo interface {
	GetEvent(ctx context.Context, id string) (*docstore.Snapshot, error)
	SetEvent(ctx context.Context, id string, fields docstore.Fields) error
	UpdateEvent(ctx context.Context, id string, fields docstore.Fields) error
	DeleteEvent(ctx context.Context, id string) error
	ListEventsOrdered(ctx context.Context, field string) ([]*docstore.Snapshot, error)
	ListEvents(ctx context.Context) ([]*docstore.Snapshot, error)

	HealthCheck(ctx context.Context) error
}

type RepoImpl struct {
	store   docstore.Store
	events  docstore.Collection
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewRepo(store docstore.Store, collection string, logger *zap.SugaredLogger, m *metrics.Metrics) *RepoImpl {
	return &RepoImpl{
		store:   store,
		events:  store.Collection(collection),
		logger:  logger,
		metrics: m,
	}
}

func (r *RepoImpl) HealthCheck(ctx context.Context) error {
	err := r.observe("ping", func() error { return r.store.Ping(ctx) })
	if err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}
	return nil
}

func (r *RepoImpl) GetEvent(ctx context.Context, id string) (*docstore.Snapshot, error) {
	r.logger.Debugf("[event: %s] start reading from store", id)

	var snap *docstore.Snapshot
	err := r.observe("get", func() (err error) {
		snap, err = r.events.Get(ctx, id)
		return err
	})
	if err != nil {
		r.logger.Errorf("[event: %s] error reading from store: %v", id, err)
		return nil, fmt.Errorf("error reading from store: %w", err)
	}
	return snap, nil
}

func (r *RepoImpl) SetEvent(ctx context.Context, id string, fields docstore.Fields) error {
	r.logger.Debugf("[event: %s] start writing to store", id)

	if err := r.observe("set", func() error { return r.events.Set(ctx, id, fields) }); err != nil {
		r.logger.Errorf("[event: %s] error writing to store: %v", id, err)
		return fmt.Errorf("error writing to store: %w", err)
	}
	r.logger.Debugf("[event: %s] written to store successfully", id)
	return nil
}

func (r *RepoImpl) UpdateEvent(ctx context.Context, id string, fields docstore.Fields) error {
	r.logger.Debugf("[event: %s] start updating %d fields in store", id, len(fields))

	err := r.observe("update", func() error { return r.events.Update(ctx, id, fields) })
	switch {
	case err == nil:
		r.logger.Debugf("[event: %s] updated in store successfully", id)
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		// удалили между проверкой и записью
		r.logger.Warnf("[event: %s] no document to update", id)
		return err
	default:
		r.logger.Errorf("[event: %s] error updating in store: %v", id, err)
		return fmt.Errorf("error updating in store: %w", err)
	}
}

func (r *RepoImpl) DeleteEvent(ctx context.Context, id string) error {
	r.logger.Debugf("[event: %s] start deleting from store", id)

	if err := r.observe("delete", func() error { return r.events.Delete(ctx, id) }); err != nil {
		r.logger.Errorf("[event: %s] error deleting from store: %v", id, err)
		return fmt.Errorf("error deleting from store: %w", err)
	}
	r.logger.Debugf("[event: %s] deleted from store successfully", id)
	return nil
}

func (r *RepoImpl) ListEventsOrdered(ctx context.Context, field string) ([]*docstore.Snapshot, error) {
	r.logger.Debugf("[order: %s] start scanning store", field)

	var snaps []*docstore.Snapshot
	err := r.observe("ordered_scan", func() (err error) {
		snaps, err = r.events.OrderedScan(ctx, field)
		return err
	})
	if err != nil {
		// решение о fallback принимает сервис, здесь только фиксируем
		r.logger.Warnf("[order: %s] ordered scan failed: %v", field, err)
		return nil, fmt.Errorf("ordered scan by %s: %w", field, err)
	}
	r.logger.Debugf("[order: %s] scanned %d documents", field, len(snaps))
	return snaps, nil
}

func (r *RepoImpl) ListEvents(ctx context.Context) ([]*docstore.Snapshot, error) {
	r.logger.Debug("start scanning store")

	var snaps []*docstore.Snapshot
	err := r.observe("scan", func() (err error) {
		snaps, err = r.events.Scan(ctx)
		return err
	})
	if err != nil {
		r.logger.Errorf("error scanning store: %v", err)
		return nil, fmt.Errorf("error scanning store: %w", err)
	}
	r.logger.Debugf("scanned %d documents", len(snaps))
	return snaps, nil
}

func (r *RepoImpl) observe(op string, fn func() error) error {
	inflight := r.metrics.Store.InFlight.WithLabelValues(op)
	inflight.Inc()
	defer inflight.Dec()

	start := time.Now()
	err := fn()

	result := resultOK
	if err != nil {
		result = resultError
	}
	r.metrics.Store.RequestsTotal.WithLabelValues(op, result).Inc()
	r.metrics.Store.DurationSeconds.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
	return err
}
