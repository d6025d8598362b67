package producer

import (
	"context"
	"errors"
	"eventplanner/internal/application/common"
	"eventplanner/pkg/broker"
	"eventplanner/pkg/metrics"
	"fmt"
	"net"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type Producer interface {
	ProduceMessage(ctx context.Context, key string, message []byte) error
	HealthCheck(ctx context.Context) error
}

type KafkaProducer struct {
	broker      *broker.KafkaBroker
	logger      *zap.SugaredLogger
	maxAttempts int
	m           *metrics.Metrics
}

func NewProducer(broker *broker.KafkaBroker, logger *zap.SugaredLogger, maxAttempts int, m *metrics.Metrics) *KafkaProducer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &KafkaProducer{
		broker:      broker,
		logger:      logger,
		maxAttempts: maxAttempts,
		m:           m,
	}
}

func (p *KafkaProducer) HealthCheck(ctx context.Context) error {
	if p.broker == nil {
		return errors.New("kafka broker is not initialized")
	}
	return p.broker.HealthCheck(ctx)
}

// ProduceMessage отправляет сообщение с ключом key, до maxAttempts попыток с backoff.
// Постоянные ошибки Kafka не ретраятся.
func (p *KafkaProducer) ProduceMessage(ctx context.Context, key string, message []byte) error {
	topic := p.broker.ProducerTopic
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			p.count(topic, "canceled")
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic:     topic,
			Key:       sarama.StringEncoder(key),
			Value:     sarama.ByteEncoder(message),
			Timestamp: time.Now(),
		}

		t0 := time.Now()
		part, off, err := p.broker.SyncProducer.SendMessage(msg)
		rt := time.Since(t0)

		if p.m != nil {
			res := "ok"
			if err != nil {
				res = "error"
			}
			p.m.Kafka.ProducerAttemptLatencySeconds.WithLabelValues(topic, res).Observe(rt.Seconds())
		}

		if err == nil {
			p.count(topic, "success")
			if p.m != nil {
				p.m.Kafka.ProducerSuccessAttempts.WithLabelValues(topic).Observe(float64(attempt))
			}
			p.logger.Debugf("[event %s] sent topic=%s partition=%d offset=%d attempt=%d rt=%s",
				key, topic, part, off, attempt, rt)
			return nil
		}

		lastErr = err

		var kerr sarama.KError
		if errors.As(err, &kerr) {
			if isPermanent(kerr) {
				p.count(topic, "permanent")
				p.logger.Errorf("[event %s] permanent kafka error attempt=%d rt=%s kafka_error=%s code=%d",
					key, attempt, rt, kerr.Error(), int16(kerr))
				return fmt.Errorf("permanent kafka error: %w", kerr)
			}
			p.logger.Warnf("[event %s] retryable kafka error attempt=%d rt=%s reason=%s",
				key, attempt, rt, ClassifyRetry(kerr))
		} else {
			p.logger.Warnf("[event %s] retryable error attempt=%d rt=%s reason=%s err=%v",
				key, attempt, rt, ClassifyRetry(err), err)
		}

		if attempt == p.maxAttempts {
			break
		}

		if err := common.SleepCtx(ctx, common.NextBackoffWithJitter(attempt-1)); err != nil {
			p.count(topic, "canceled")
			return err
		}
	}

	p.count(topic, "failed")
	p.logger.Errorf("[event %s] produce failed after %d attempts: %v", key, p.maxAttempts, lastErr)
	return fmt.Errorf("produce failed after %d attempts: %w", p.maxAttempts, lastErr)
}

func (p *KafkaProducer) count(topic, result string) {
	if p.m != nil {
		p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, result).Inc()
	}
}

func isPermanent(k sarama.KError) bool {
	switch k {
	case sarama.ErrTopicAuthorizationFailed,
		sarama.ErrClusterAuthorizationFailed,
		sarama.ErrInvalidRequest,
		sarama.ErrInvalidMessage,
		sarama.ErrMessageSizeTooLarge,
		sarama.ErrSASLAuthenticationFailed:
		return true
	default:
		return false
	}
}

// ClassifyRetry даёт короткую причину временной ошибки для логов
func ClassifyRetry(err error) string {
	var k sarama.KError
	if errors.As(err, &k) {
		switch k {
		case sarama.ErrLeaderNotAvailable:
			return "leader_not_available"
		case sarama.ErrRequestTimedOut:
			return "broker_timeout"
		case sarama.ErrNotEnoughReplicas, sarama.ErrNotEnoughReplicasAfterAppend:
			return "not_enough_replicas"
		default:
			return k.Error()
		}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return "net_timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "client_deadline"
	}
	return "other"
}
