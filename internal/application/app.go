package application

import (
	"context"
	"errors"
	"eventplanner/internal/application/common"
	"eventplanner/internal/application/repo"
	"eventplanner/internal/application/service"
	use_cases "eventplanner/internal/application/use-cases"
	"eventplanner/internal/controllers/cron"
	"eventplanner/internal/controllers/handler"
	"eventplanner/internal/transport/producer"
	"eventplanner/pkg/broker"
	"eventplanner/pkg/config"
	"eventplanner/pkg/docstore"
	"eventplanner/pkg/metrics"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type App struct {
	ctx            context.Context
	conf           *config.Config
	logger         *zap.SugaredLogger
	store          docstore.Store
	httpServer     *fiber.App
	kafka          *broker.KafkaBroker
	cronController *cron.Controller
	relayDone      sync.WaitGroup
}

// NewApp собирает слои и запускает фоновые задачи. kafkaBroker может быть nil:
// тогда уведомления об изменениях выключены.
func NewApp(
	ctx context.Context,
	conf *config.Config,
	logger *zap.SugaredLogger,
	store docstore.Store,
	httpServer *fiber.App,
	kafkaBroker *broker.KafkaBroker,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer) (*App, error) {
	logger.Infof("Запуск Event Planner API версии: %s, хранилище: %s", common.Version, conf.Store.Driver)

	eventsRepo := repo.NewRepo(store, conf.Store.Collection, logger, m)

	var srv *service.ServiceImpl
	if kafkaBroker != nil {
		kafkaProducer := producer.NewProducer(kafkaBroker, logger, conf.Broker.Kafka.MaxAttempts, m)
		srv = service.NewService(eventsRepo, kafkaProducer, logger, m, &conf.Relay)
	} else {
		srv = service.NewService(eventsRepo, nil, logger, m, &conf.Relay)
	}

	uc := use_cases.NewUseCase(srv, logger, conf)
	h := handler.NewEventHandler(uc, logger)
	r := handler.NewRouter(h, httpServer, gatherer, logger)

	cronController := cron.NewController(ctx, logger)
	if err := cronController.RegisterStoreProbeJob(uc, conf.Cron); err != nil {
		return nil, err
	}
	// первая проба сразу, не дожидаясь расписания
	uc.ProbeStore(ctx)
	cronController.Start()

	r.RegisterRouter()

	app := &App{
		ctx:            ctx,
		conf:           conf,
		logger:         logger,
		store:          store,
		httpServer:     httpServer,
		kafka:          kafkaBroker,
		cronController: cronController,
	}

	app.relayDone.Add(1)
	go func() {
		defer app.relayDone.Done()
		uc.RunRelay(ctx)
	}()

	return app, nil
}

func (a *App) Run() error {
	return a.httpServer.Listen(fmt.Sprintf(":%s", a.conf.Server.Port))
}

// Shutdown останавливает приём запросов, фоновые задачи и закрывает соединения.
// Relay останавливается по ctx, переданному в NewApp.
func (a *App) Shutdown() error {
	if a.cronController != nil {
		a.cronController.Stop()
	}
	errHTTP := a.httpServer.Shutdown()

	a.relayDone.Wait()

	var errKafka error
	if a.kafka != nil {
		errKafka = a.kafka.Close()
		a.logger.Info("kafka producer closed")
	}

	errStore := a.store.Close()
	a.logger.Infof("%s store connection closed", a.conf.Store.Driver)

	return errors.Join(errHTTP, errKafka, errStore)
}
