package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)
	ctxLogger := FromContext(ctx)
	ctxLogger.Info().Msg("hello")
	if !strings.Contains(buf.String(), `"message":"hello"`) {
		t.Errorf("context logger did not write: %q", buf.String())
	}

	buf.Reset()
	bareLogger := FromContext(context.Background())
	bareLogger.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("bare context should give a no-op logger, got %q", buf.String())
	}
}

func TestTaggedEventLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	LogPurchase(WithTeam(WithEpisode(logger, 7), "Blue"), "Brass Lamp", 42.5, true, 157.5)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"event":       "purchase",
		"team":        "Blue",
		"seed":        float64(7),
		"item":        "Brass Lamp",
		"price":       42.5,
		"negotiated":  true,
		"budget_left": 157.5,
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
