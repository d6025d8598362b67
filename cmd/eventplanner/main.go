package main

import (
	"context"
	"errors"
	"eventplanner/docs"
	"eventplanner/internal/application"
	"eventplanner/pkg/broker"
	"eventplanner/pkg/config"
	"eventplanner/pkg/docstore"
	"eventplanner/pkg/httpserver"
	"eventplanner/pkg/metrics"
	"eventplanner/pkg/observability"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
)

// @title           Event Planner API
// @version         0.3.1
// @description     CRUD API for events stored in a document database

// @BasePath /

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf, err := config.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := observability.InitLogger(conf.LoggingLevel)
	defer func() { _ = logger.Sync() }()

	logger.Infof("LOGGING_LEVEL = %s", conf.LoggingLevel)
	if strings.ToLower(conf.LoggingLevel) == "debug" {
		broker.EnableSaramaZapLogs(logger)
	}

	docs.SwaggerInfo.Host = conf.Server.SwaggerHost
	docs.SwaggerInfo.Schemes = []string{conf.Server.SwaggerSchema}

	m := metrics.New(prometheus.DefaultRegisterer)

	fiberServer := httpserver.NewFiber(conf, m)

	store, err := docstore.Open(ctx, conf.Store)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("%s store connected, collection: %s", conf.Store.Driver, conf.Store.Collection)

	var kafka *broker.KafkaBroker
	if conf.Broker.Kafka.Enabled() {
		kafka, err = broker.NewKafkaBroker(conf.Broker.Kafka, logger)
		if err != nil {
			logger.Fatal(err)
		}
	} else {
		logger.Info("broker.kafka.brokers is empty, change notifications disabled")
	}

	server, err := application.NewApp(ctx, &conf, logger, store, fiberServer, kafka, m, prometheus.DefaultGatherer)
	if err != nil {
		logger.Fatal(err)
	}

	logger.Infof("Event Planner API started, server config: %+v", conf.Server)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalf("error listening for server: %v", err)
				return
			}

			logger.Infof("server %v closed", conf.Server.Port)
		}
	}()

	//graceful shutdown
	osSignal := <-interrupt
	switch osSignal {
	case os.Interrupt:
		logger.Infof("%v Got SIGINT...", conf.Server.Port)
	case syscall.SIGTERM:
		logger.Infof("%v Got SIGTERM...", conf.Server.Port)
	}

	cancel()

	if err := server.Shutdown(); err != nil {
		logger.Errorf("server %v shutdown with errors: %v", conf.Server.Port, err)
		return
	}

	logger.Infof("server shutdown %v done", conf.Server.Port)
}
