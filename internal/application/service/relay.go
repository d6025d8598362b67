package service

import (
	"context"
	"encoding/json"
	"eventplanner/internal/application/entity"
	"sync"
)

// notify ставит уведомление в буфер без блокировки запроса.
// Полный буфер - уведомление теряется, запись в хранилище уже состоялась.
func (s *ServiceImpl) notify(typ entity.NotificationType, id string, event *entity.Event) {
	if s.notifications == nil {
		return
	}

	n := entity.Notification{
		Type:       typ,
		EventID:    id,
		Event:      event,
		OccurredAt: s.now().UTC(),
	}
	select {
	case s.notifications <- n:
	default:
		s.metrics.Kafka.NotificationsDroppedTotal.WithLabelValues(string(typ)).Inc()
		s.logger.Warnf("[event: %s] relay buffer full, %s notification dropped", id, typ)
	}
}

// RelayEventRun запускает воркеров, отправляющих уведомления в Kafka, и ждёт их
// остановки по ctx.
func (s *ServiceImpl) RelayEventRun(ctx context.Context) {
	if s.notifications == nil {
		s.logger.Info("relay disabled: kafka is not configured")
		return
	}

	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	s.logger.Infow("relay started", "workers", workers, "buffer", cap(s.notifications))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.worker(ctx, id)
		}(i)
	}
	wg.Wait()
	s.logger.Infow("relay stopped")
}

func (s *ServiceImpl) worker(ctx context.Context, id int) {
	s.logger.Debugw("worker started", "id", id)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debugw("worker stopping", "id", id)
			return
		case n := <-s.notifications:
			s.ProcessOne(ctx, id, n)
		}
	}
}

// ProcessOne отправляет одно уведомление (экспортируем для тестирования)
func (s *ServiceImpl) ProcessOne(ctx context.Context, wid int, n entity.Notification) {
	s.logger.Debugf("[event: %s] relay-process %s started, workerID: %d", n.EventID, n.Type, wid)

	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Errorf("[event: %s] failed to marshal notification: %v", n.EventID, err)
		return
	}

	if err := s.kafkaProducer.ProduceMessage(ctx, n.EventID, payload); err != nil {
		s.logger.Errorf("[event: %s] kafka send failed, %s notification lost: %v", n.EventID, n.Type, err)
		return
	}
	s.logger.Debugf("[event: %s] %s sent to kafka", n.EventID, n.Type)
}
