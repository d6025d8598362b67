package broker

import (
	"context"
	"eventplanner/pkg/config"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/IBM/sarama"
)

// KafkaBroker держит синхронный producer для уведомлений об изменениях событий.
// Консьюмера нет: сервис только публикует.
type KafkaBroker struct {
	ProducerTopic string
	SyncProducer  sarama.SyncProducer
	Brokers       []string
	conf          config.Kafka
	logger        *zap.SugaredLogger
}

func NewKafkaBroker(conf config.Kafka, logger *zap.SugaredLogger) (*KafkaBroker, error) {
	brokers := splitBrokers(conf.Brokers)
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}

	logger.Debugf("Создание producer для brokers: %s", conf.Brokers)
	syncProducer, err := newSyncProducer(brokers, conf)
	if err != nil {
		logger.Errorf("Ошибка создания producer: %v", err)
		return nil, err
	}

	broker := &KafkaBroker{
		ProducerTopic: conf.WriterTopic,
		SyncProducer:  syncProducer,
		Brokers:       brokers,
		conf:          conf,
		logger:        logger,
	}
	logger.Infof("KafkaBroker создан. Producer topic: %s", broker.ProducerTopic)
	return broker, nil
}

// HealthCheck проверяет producer и доступность брокеров минимальным клиентом.
// client.Partitions() не используем: он требует Describe в ACL.
func (kb *KafkaBroker) HealthCheck(ctx context.Context) error {
	if kb.SyncProducer == nil {
		return fmt.Errorf("kafka producer is not initialized")
	}

	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 && left < timeout {
			timeout = left
		}
	}

	cfg := sarama.NewConfig()
	cfg.Net.DialTimeout = timeout
	cfg.Net.ReadTimeout = timeout
	cfg.Net.WriteTimeout = timeout
	cfg.Metadata.Timeout = timeout
	cfg.Metadata.Retry.Max = 1
	applySASLConfig(cfg, kb.conf)

	client, err := sarama.NewClient(kb.Brokers, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to kafka brokers: %w", err)
	}
	defer client.Close()

	if len(client.Brokers()) == 0 {
		return fmt.Errorf("no kafka brokers available")
	}
	return nil
}

func (kb *KafkaBroker) Close() error {
	if kb.SyncProducer == nil {
		return nil
	}
	return kb.SyncProducer.Close()
}

func applySASLConfig(cfg *sarama.Config, conf config.Kafka) {
	if conf.WriterUsr != "" && conf.WriterUsrPwd != "" {
		cfg.Net.SASL.User = conf.WriterUsr
		cfg.Net.SASL.Password = conf.WriterUsrPwd
		cfg.Net.SASL.Enable = true
		cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	}
}

func EnableSaramaZapLogs(base *zap.SugaredLogger) {
	logger := base.Named("sarama")
	sarama.Logger = &zapSarama{logger}
	logger.Debug("sarama logger initialized")
}

type zapSarama struct{ l *zap.SugaredLogger }

func (z *zapSarama) Print(v ...interface{})                 { z.l.Debug(v...) }
func (z *zapSarama) Printf(format string, v ...interface{}) { z.l.Debugf(format, v...) }
func (z *zapSarama) Println(v ...interface{})               { z.l.Debug(v...) }

func splitBrokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func newSyncProducer(brokers []string, conf config.Kafka) (sarama.SyncProducer, error) {
	kafkaConfig := sarama.NewConfig()

	kafkaConfig.Net.DialTimeout = 10 * time.Second
	kafkaConfig.Net.ReadTimeout = 15 * time.Second
	kafkaConfig.Net.WriteTimeout = 15 * time.Second
	kafkaConfig.Net.KeepAlive = 30 * time.Second

	kafkaConfig.Metadata.Timeout = 10 * time.Second
	kafkaConfig.Metadata.Retry.Max = 1
	kafkaConfig.Metadata.Retry.Backoff = 1 * time.Second
	kafkaConfig.Metadata.RefreshFrequency = 1 * time.Minute

	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Producer.Return.Successes = true
	kafkaConfig.Producer.Return.Errors = true
	// повторы делает ProduceMessage, sarama не ретраит
	kafkaConfig.Producer.Retry.Max = 0
	kafkaConfig.Producer.Timeout = 10 * time.Second
	// ключ = id события, изменения одного события попадают в одну партицию
	kafkaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	applySASLConfig(kafkaConfig, conf)

	producer, err := sarama.NewSyncProducer(brokers, kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании Kafka Sync Producer: %w", err)
	}

	return producer, nil
}
