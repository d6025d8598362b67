package validator

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate - singleton экземпляр валидатора для переиспользования
	Validate *validator.Validate

	ErrTimestampFormat = errors.New("expected ISO-8601 timestamp, e.g. 2025-11-01T14:30:00Z")
)

// layouts с зоной идут первыми; остальные считаются UTC
var (
	zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

func init() {
	Validate = validator.New()

	// в ошибках поле называется так же, как в JSON
	Validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Регистрируем кастомные валидаторы
	_ = Validate.RegisterValidation("iso8601", validateISO8601)
}

// ParseTimestamp разбирает ISO-8601 дату; дата без смещения трактуется как UTC
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrTimestampFormat
}

// validateISO8601 проверяет, что строка является валидной ISO-8601 датой
func validateISO8601(fl validator.FieldLevel) bool {
	_, err := ParseTimestamp(fl.Field().String())
	return err == nil
}
