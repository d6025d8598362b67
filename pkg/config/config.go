package config

import (
	"eventplanner/internal/appers"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverFirestore = "firestore"
	DriverMongo     = "mongo"
	DriverPostgres  = "postgres"
	DriverMemory    = "memory"
)

type Config struct {
	Server       Server      `mapstructure:"server"`
	Store        Store       `mapstructure:"store"`
	Broker       Broker      `mapstructure:"broker"`
	Cron         Cron        `mapstructure:"cron"`
	Relay        RelayConfig `mapstructure:"relay"`
	LoggingLevel string      `mapstructure:"logging-level"`
}

type Server struct {
	Port          string `mapstructure:"port"`
	SwaggerHost   string `mapstructure:"swagger_host"`
	SwaggerSchema string `mapstructure:"swagger_schema"`
	BodyLimit     int    `mapstructure:"body_limit"`
	CORSOrigins   string `mapstructure:"cors_origins"` // через запятую
}

type Store struct {
	Driver      string   `mapstructure:"driver"`
	Credentials string   `mapstructure:"credentials"` // путь к service-account JSON для firestore
	ProjectID   string   `mapstructure:"project_id"`
	Collection  string   `mapstructure:"collection"`
	Mongo       Mongo    `mapstructure:"mongo"`
	Postgres    Postgres `mapstructure:"postgres"`
}

type Mongo struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type Postgres struct {
	ConnString     string `mapstructure:"conn_string"`
	MaxConnections int32  `mapstructure:"max_connections"`
	MigrationsDir  string `mapstructure:"migrations_dir"`
}

type Broker struct {
	Kafka Kafka `mapstructure:"kafka"`
}

type Kafka struct {
	Brokers      string `mapstructure:"brokers"`
	WriterTopic  string `mapstructure:"writerTopic"`
	WriterUsr    string `mapstructure:"writerUsr"`
	WriterUsrPwd string `mapstructure:"writerUsrPwd"`
	MaxAttempts  int    `mapstructure:"maxAttempts"`
}

// Enabled сообщает, настроена ли публикация уведомлений в Kafka
func (k Kafka) Enabled() bool {
	return strings.TrimSpace(k.Brokers) != ""
}

type Cron struct {
	Schedule string `mapstructure:"schedule"` // формат cron, например "0 */5 * * * *"
	Interval string `mapstructure:"interval"` // например "@every 30s"
	// Приоритет: если указан Schedule, используется он, иначе Interval
}

type RelayConfig struct {
	Workers    int `mapstructure:"workers"`
	BufferSize int `mapstructure:"bufferSize"`
}

var defaults = map[string]any{
	"server.port":                    "8000",
	"server.swagger_host":            "",
	"server.swagger_schema":          "http",
	"server.body_limit":              1024 * 1024,
	"server.cors_origins":            "http://localhost:5173,http://localhost:3000",
	"store.driver":                   DriverFirestore,
	"store.credentials":              "",
	"store.project_id":               "",
	"store.collection":               "events",
	"store.mongo.uri":                "",
	"store.mongo.database":           "eventplanner",
	"store.postgres.conn_string":     "",
	"store.postgres.max_connections": 5,
	"store.postgres.migrations_dir":  "resources/migrations",
	"broker.kafka.brokers":           "",
	"broker.kafka.writerTopic":       "events.changes",
	"broker.kafka.writerUsr":         "",
	"broker.kafka.writerUsrPwd":      "",
	"broker.kafka.maxAttempts":       1,
	"cron.schedule":                  "",
	"cron.interval":                  "@every 30s",
	"relay.workers":                  2,
	"relay.bufferSize":               256,
	"logging-level":                  "info",
}

func NewConfig() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	// Настраиваем замену точек и дефисов на подчеркивания для переменных окружения
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// AutomaticEnv видит только известные ключи, поэтому регистрируем все
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	_ = v.BindEnv("store.credentials", "STORE_CREDENTIALS", "FIREBASE_CREDENTIALS")

	var conf Config
	err := v.ReadInConfig()
	// Игнорируем ошибку, если файл не найден - используем только переменные окружения
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return conf, err
		}
	}

	if err = v.Unmarshal(&conf); err != nil {
		return conf, err
	}

	return conf, conf.Validate()
}

// Validate проверяет, что с конфигурацией можно подключиться к хранилищу
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverFirestore:
		if c.Store.Credentials == "" {
			return &appers.StartupError{Op: "config", Err: fmt.Errorf("store credentials path is not set (FIREBASE_CREDENTIALS)")}
		}
		info, err := os.Stat(c.Store.Credentials)
		if err != nil {
			return &appers.StartupError{Op: "config", Err: fmt.Errorf("store credentials: %w", err)}
		}
		if info.IsDir() {
			return &appers.StartupError{Op: "config", Err: fmt.Errorf("store credentials %q is a directory", c.Store.Credentials)}
		}
	case DriverMongo:
		if c.Store.Mongo.URI == "" {
			return &appers.StartupError{Op: "config", Err: fmt.Errorf("store.mongo.uri is not set")}
		}
	case DriverPostgres:
		if c.Store.Postgres.ConnString == "" {
			return &appers.StartupError{Op: "config", Err: fmt.Errorf("store.postgres.conn_string is not set")}
		}
	case DriverMemory:
	default:
		return &appers.StartupError{Op: "config", Err: fmt.Errorf("unknown store driver %q", c.Store.Driver)}
	}

	if c.Store.Collection == "" {
		return &appers.StartupError{Op: "config", Err: fmt.Errorf("store.collection is empty")}
	}
	return nil
}

// Origins возвращает список разрешённых CORS источников
func (s Server) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ProbeTimeout ограничивает проверку хранилища в health-пробах
const ProbeTimeout = 3 * time.Second
