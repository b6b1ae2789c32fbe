package file

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestSlogAuditLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("run_id", "run-123", "step_index", 2)
	auditLogger := NewSlogAuditLogger(logger)

	entry := AuditEntry{
		Timestamp:    time.Now(),
		Operation:    "fileWrite",
		Path:         "/tmp/test.txt",
		Result:       "success",
		Duration:     100 * time.Millisecond,
		BytesWritten: 1024,
	}

	auditLogger.Log(context.Background(), entry)

	output := buf.String()
	if output == "" {
		t.Error("Expected audit log output, got empty string")
	}

	// Check that the log contains key fields
	expectedFields := []string{
		"fileWrite",
		"/tmp/test.txt",
		"success",
		`"bytes_written":1024`,
		`"duration_ms":100`,
		"run-123",
	}

	for _, field := range expectedFields {
		if !bytes.Contains(buf.Bytes(), []byte(field)) {
			t.Errorf("Expected log to contain %q, got: %s", field, output)
		}
	}
}

func TestSlogAuditLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	auditLogger := NewSlogAuditLogger(logger)

	entry := AuditEntry{
		Timestamp: time.Now(),
		Operation: "fileRead",
		Path:      "/tmp/missing.txt",
		Result:    "error",
		Duration:  10 * time.Millisecond,
		Error:     "file not found",
	}

	auditLogger.Log(context.Background(), entry)

	output := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte(`"level":"WARN"`)) {
		t.Errorf("Expected warn level, got: %s", output)
	}
	if !bytes.Contains(buf.Bytes(), []byte("file not found")) {
		t.Errorf("Expected error message in log, got: %s", output)
	}
}

func TestSlogAuditLogger_NilLogger(t *testing.T) {
	// Should not panic with nil logger
	auditLogger := NewSlogAuditLogger(nil)

	auditLogger.Log(context.Background(), AuditEntry{
		Operation: "fileWrite",
		Path:      "/tmp/test.txt",
		Result:    "success",
	})
}

func TestNoopAuditLogger(t *testing.T) {
	logger := &NoopAuditLogger{}

	logger.Log(context.Background(), AuditEntry{
		Operation: "fileWrite",
		Path:      "/tmp/test.txt",
		Result:    "success",
	})
}
