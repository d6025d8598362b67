package producer

import (
	"context"
	"errors"
	"eventplanner/pkg/broker"
	"eventplanner/pkg/metrics"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

const topic = "events.changes"

func newTestProducer(t *testing.T, maxAttempts int) (*KafkaProducer, *mocks.SyncProducer, *metrics.Metrics) {
	t.Helper()

	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sp := mocks.NewSyncProducer(t, cfg)
	t.Cleanup(func() { _ = sp.Close() })

	m := metrics.New(prometheus.NewRegistry())
	kb := &broker.KafkaBroker{ProducerTopic: topic, SyncProducer: sp}
	return NewProducer(kb, zap.NewNop().Sugar(), maxAttempts, m), sp, m
}

func TestProduceMessage_Success(t *testing.T) {
	t.Parallel()

	p, sp, m := newTestProducer(t, 1)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"type":"event_created"}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})

	if err := p.ProduceMessage(context.Background(), "abc", []byte(`{"type":"event_created"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "success")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
}

func TestProduceMessage_PermanentErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	p, sp, m := newTestProducer(t, 3)
	sp.ExpectSendMessageAndFail(sarama.ErrTopicAuthorizationFailed)

	err := p.ProduceMessage(context.Background(), "abc", []byte("{}"))
	if !errors.Is(err, sarama.ErrTopicAuthorizationFailed) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if got := testutil.ToFloat64(m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "permanent")); got != 1 {
		t.Fatalf("expected 1 permanent failure, got %v", got)
	}
}

func TestProduceMessage_RetriesTransientError(t *testing.T) {
	t.Parallel()

	p, sp, m := newTestProducer(t, 2)
	sp.ExpectSendMessageAndFail(sarama.ErrLeaderNotAvailable)
	sp.ExpectSendMessageAndSucceed()

	if err := p.ProduceMessage(context.Background(), "abc", []byte("{}")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "success")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
}

func TestProduceMessage_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	p, sp, m := newTestProducer(t, 1)
	sp.ExpectSendMessageAndFail(sarama.ErrNotEnoughReplicas)

	err := p.ProduceMessage(context.Background(), "abc", []byte("{}"))
	if !errors.Is(err, sarama.ErrNotEnoughReplicas) {
		t.Fatalf("expected wrapped kafka error, got %v", err)
	}
	if got := testutil.ToFloat64(m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "failed")); got != 1 {
		t.Fatalf("expected 1 failed operation, got %v", got)
	}
}

func TestProduceMessage_CanceledContext(t *testing.T) {
	t.Parallel()

	p, _, m := newTestProducer(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.ProduceMessage(ctx, "abc", []byte("{}")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := testutil.ToFloat64(m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "canceled")); got != 1 {
		t.Fatalf("expected 1 canceled operation, got %v", got)
	}
}

func TestClassifyRetry(t *testing.T) {
	t.Parallel()

	tests := map[error]string{
		sarama.ErrLeaderNotAvailable: "leader_not_available",
		sarama.ErrRequestTimedOut:    "broker_timeout",
		sarama.ErrNotEnoughReplicas:  "not_enough_replicas",
		context.DeadlineExceeded:     "net_timeout",
		context.Canceled:             "client_deadline",
		errors.New("boom"):           "other",
	}
	for err, want := range tests {
		if got := ClassifyRetry(err); got != want {
			t.Fatalf("%v: expected %q, got %q", err, want, got)
		}
	}
}
