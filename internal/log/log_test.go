package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextWithBuildID(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		buildID string
		want    string
	}{
		{
			name:    "nil context",
			ctx:     nil,
			buildID: "build-123",
			want:    "build-123",
		},
		{
			name:    "background context",
			ctx:     context.Background(),
			buildID: "build-456",
			want:    "build-456",
		},
		{
			name:    "empty build ID",
			ctx:     context.Background(),
			buildID: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithBuildID(tt.ctx, tt.buildID)
			got := BuildIDFromContext(ctx)
			if got != tt.want {
				t.Errorf("BuildIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildIDFromContextEmpty(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{
			name: "nil context",
			ctx:  nil,
			want: "",
		},
		{
			name: "context without build ID",
			ctx:  context.Background(),
			want: "",
		},
		{
			name: "context with wrong type",
			ctx:  context.WithValue(context.Background(), buildIDKey, 123),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildIDFromContext(tt.ctx)
			if got != tt.want {
				t.Errorf("BuildIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithContext(t *testing.T) {
	baseLogger := WithComponent("test")

	ctx := ContextWithBuildID(context.Background(), "build-123")
	enriched := WithContext(ctx, baseLogger)
	if enriched.GetLevel() != baseLogger.GetLevel() {
		t.Error("logger level should be preserved")
	}

	// Empty context should return the original logger unchanged.
	same := WithContext(context.Background(), baseLogger)
	if same.GetLevel() != baseLogger.GetLevel() {
		t.Error("logger level should be preserved")
	}
}

func TestWithContextEmitsBuildID(t *testing.T) {
	var buf bytes.Buffer
	testLogger := zerolog.New(&buf)

	ctx := ContextWithBuildID(context.Background(), "build-789")
	logger := WithContext(ctx, testLogger)
	logger.Info().Msg("compiling")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if got, ok := entry["build_id"].(string); !ok || got != "build-789" {
		t.Errorf("build_id = %v, want %q", entry["build_id"], "build-789")
	}
}

func TestWithComponentFromContext(t *testing.T) {
	logger := WithComponentFromContext(context.Background(), "shelf")
	if logger.GetLevel() > zerolog.PanicLevel {
		t.Error("expected valid logger from WithComponentFromContext")
	}
}

func TestBase(t *testing.T) {
	baseLogger := Base()
	if baseLogger.GetLevel() > zerolog.PanicLevel {
		t.Error("expected valid base logger with reasonable log level")
	}
}

func TestFromContextFallback(t *testing.T) {
	if l := FromContext(nil); l == nil {
		t.Fatal("FromContext(nil) returned nil logger")
	}
	if l := FromContext(context.Background()); l == nil {
		t.Fatal("FromContext(background) returned nil logger")
	}
}
