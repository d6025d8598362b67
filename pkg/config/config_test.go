package config

import (
	"errors"
	"eventplanner/internal/appers"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverMemory)

	conf, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Server.Port != "8000" || conf.Store.Collection != "events" {
		t.Fatalf("unexpected defaults: %+v", conf)
	}
	if conf.Broker.Kafka.Enabled() {
		t.Fatalf("kafka must be disabled without brokers")
	}
	if conf.Broker.Kafka.MaxAttempts != 1 {
		t.Fatalf("expected a single produce attempt by default, got %d", conf.Broker.Kafka.MaxAttempts)
	}
	if conf.Cron.Interval != "@every 30s" || conf.LoggingLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", conf)
	}
	want := []string{"http://localhost:5173", "http://localhost:3000"}
	if got := conf.Server.Origins(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected origins %v, got %v", want, got)
	}
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverMemory)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RELAY_WORKERS", "4")
	t.Setenv("BROKER_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("LOGGING_LEVEL", "debug")

	conf, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Server.Port != "9090" || conf.Relay.Workers != 4 || conf.LoggingLevel != "debug" {
		t.Fatalf("env overrides not applied: %+v", conf)
	}
	if !conf.Broker.Kafka.Enabled() {
		t.Fatalf("kafka must be enabled when brokers are set")
	}
}

func TestNewConfig_FirebaseCredentialsEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service-account.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	t.Setenv("FIREBASE_CREDENTIALS", path)

	conf, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Store.Driver != DriverFirestore || conf.Store.Credentials != path {
		t.Fatalf("expected firestore with %s, got %+v", path, conf.Store)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := map[string]Store{
		"firestore without credentials": {Driver: DriverFirestore, Collection: "events"},
		"firestore missing file":        {Driver: DriverFirestore, Credentials: filepath.Join(dir, "nope.json"), Collection: "events"},
		"firestore directory":           {Driver: DriverFirestore, Credentials: dir, Collection: "events"},
		"mongo without uri":             {Driver: DriverMongo, Collection: "events"},
		"postgres without dsn":          {Driver: DriverPostgres, Collection: "events"},
		"unknown driver":                {Driver: "cassandra", Collection: "events"},
		"empty collection":              {Driver: DriverMemory},
	}
	for name, store := range tests {
		err := Config{Store: store}.Validate()
		var startupErr *appers.StartupError
		if !errors.As(err, &startupErr) {
			t.Fatalf("%s: expected StartupError, got %v", name, err)
		}
	}

	if err := (Config{Store: Store{Driver: DriverMemory, Collection: "events"}}).Validate(); err != nil {
		t.Fatalf("memory store must be valid, got %v", err)
	}
}
