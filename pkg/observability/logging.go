package observability

import (
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "eventplanner"

// InitLogger строит JSON-логгер для stdout, поле service есть в каждой записи
func InitLogger(level string) *zap.SugaredLogger {
	logConfig := zap.NewProductionConfig()
	logConfig.Sampling = nil
	logConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	logConfig.DisableStacktrace = true
	logConfig.InitialFields = map[string]any{"service": serviceName}

	logConfig.Level = zap.NewAtomicLevelAt(DetermineLogLevel(level))

	logger, err := logConfig.Build()
	if err != nil {
		log.Fatal(err)
	}

	return logger.Sugar()
}

func DetermineLogLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return zap.InfoLevel
	}
	switch lvl {
	case zap.DPanicLevel, zap.PanicLevel:
		// паника из-за уровня логов нам не нужна
		return zap.ErrorLevel
	}
	return lvl
}
