package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-11-01T14:30:00Z", time.Date(2025, 11, 1, 14, 30, 0, 0, time.UTC)},
		{"2025-11-01T16:30:00+02:00", time.Date(2025, 11, 1, 14, 30, 0, 0, time.UTC)},
		{"2025-11-01T14:30:00.250Z", time.Date(2025, 11, 1, 14, 30, 0, 250_000_000, time.UTC)},
		{"2025-11-01T14:30:00", time.Date(2025, 11, 1, 14, 30, 0, 0, time.UTC)},
		{"2025-11-01T14:30", time.Date(2025, 11, 1, 14, 30, 0, 0, time.UTC)},
		{"2025-11-01", time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.in, tt.want, got)
		}
	}

	for _, bad := range []string{"", "tomorrow", "2025-13-01T00:00:00Z", "01/11/2025"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestValidate_ISO8601Tag(t *testing.T) {
	t.Parallel()

	type body struct {
		Date     string  `validate:"required,iso8601"`
		Optional *string `validate:"omitempty,iso8601"`
	}

	if err := Validate.Struct(body{Date: "2025-11-01T14:30:00Z"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := Validate.Struct(body{Date: "nope"}); err == nil {
		t.Fatalf("expected invalid date to fail")
	}
	bad := "nope"
	if err := Validate.Struct(body{Date: "2025-11-01", Optional: &bad}); err == nil {
		t.Fatalf("expected invalid optional date to fail")
	}
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	t.Parallel()

	type body struct {
		Title string `json:"title" validate:"required"`
	}

	err := Validate.Struct(body{})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 {
		t.Fatalf("expected one validation error, got %v", err)
	}
	if verrs[0].Field() != "title" {
		t.Fatalf("expected json field name, got %q", verrs[0].Field())
	}
}
