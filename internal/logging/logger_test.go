package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/complytools/cacsync/internal/logging"
)

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Level:  logging.LevelInfo,
		Output: &buf,
		JSON:   false,
	})

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected output to contain 'key=value', got: %s", output)
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Level:  logging.LevelInfo,
		Output: &buf,
		JSON:   true,
	})

	logger.Info("test message", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if entry["msg"] != "test message" {
		t.Errorf("expected msg='test message', got: %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("expected key='value', got: %v", entry["key"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Level:  logging.LevelWarn,
		Output: &buf,
	})

	// These should be filtered out
	logger.Debug("debug message")
	logger.Info("info message")

	// This should appear
	logger.Warn("warn message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("debug message should be filtered at warn level")
	}
	if strings.Contains(output, "info message") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("warn message should appear at warn level")
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := logging.DefaultOptions()

	if opts.Level != logging.LevelInfo {
		t.Errorf("expected default level to be Info, got: %v", opts.Level)
	}
	if opts.JSON {
		t.Error("expected default JSON to be false")
	}
	if opts.AddSource {
		t.Error("expected default AddSource to be false")
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Level:  logging.LevelInfo,
		Output: &buf,
	})
	logging.SetDefault(logger)

	childLogger := logging.With("component", "test")
	childLogger.Info("child message")

	output := buf.String()
	if !strings.Contains(output, "component=test") {
		t.Errorf("expected output to contain 'component=test', got: %s", output)
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Level:  logging.LevelInfo,
		Output: &buf,
	})

	ctx := logging.NewContext(context.Background(), logger)
	got := logging.FromContext(ctx)
	if got != logger {
		t.Error("expected FromContext to return the attached logger")
	}

	if logging.FromContext(context.Background()) != nil {
		t.Error("expected FromContext to return nil for a bare context")
	}

	fromCtx := logging.WithContext(ctx)
	fromCtx.Info("context message")
	if !strings.Contains(buf.String(), "context message") {
		t.Errorf("expected context logger output, got: %s", buf.String())
	}
}

func TestAttrHelpers(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{"product", logging.Product("rhel8"), logging.KeyProduct, "rhel8"},
		{"policy", logging.Policy("abcd-levels"), logging.KeyPolicy, "abcd-levels"},
		{"control", logging.Control("AC-1"), logging.KeyControl, "AC-1"},
		{"rule", logging.Rule("configure_crypto_policy"), logging.KeyRule, "configure_crypto_policy"},
		{"variable", logging.Variable("var_password_pam_minlen"), logging.KeyVariable, "var_password_pam_minlen"},
		{"profile", logging.Profile("example"), logging.KeyProfile, "example"},
		{"level", logging.Level("medium"), logging.KeyLevel, "medium"},
		{"path", logging.Path("/tmp/controls"), logging.KeyPath, "/tmp/controls"},
		{"operation", logging.Operation("sync"), logging.KeyOperation, "sync"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("attr key = %q, want %q", tt.attr.Key, tt.key)
			}
			if got := tt.attr.Value.String(); got != tt.want {
				t.Errorf("attr value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErr(t *testing.T) {
	if attr := logging.Err(nil); attr.Key != "" {
		t.Errorf("expected empty attr for nil error, got key %q", attr.Key)
	}
}
