package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDIHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "drive created",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tdrive created\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "locate candidate",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\tlocate candidate\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelWarn,
			message: "entry read failed",
			attrs:   []slog.Attr{slog.String("path", "/Volumes/A/x"), slog.Int("files", 42)},
			want:    "2024-06-15T14:30:45Z\tWARN\top-789\tentry read failed\tpath=/Volumes/A/x\tfiles=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newDIHandler(&buf, slog.LevelDebug, tt.opID)

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestDIHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newDIHandler(&buf, slog.LevelDebug, "op-1")

	h2 := h.WithAttrs([]slog.Attr{slog.String("command", "scan")}).(*diHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "scan started", 0)
	r.AddAttrs(slog.String("drive", "A"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "command=scan") {
		t.Errorf("expected pre-set attr command=scan, got: %q", got)
	}
	if !strings.Contains(got, "drive=A") {
		t.Errorf("expected record attr drive=A, got: %q", got)
	}
	if len(h.attrs) != 0 {
		t.Errorf("original handler attrs modified: got %d, want 0", len(h.attrs))
	}
}

func TestDIHandler_Enabled(t *testing.T) {
	h := newDIHandler(&bytes.Buffer{}, slog.LevelWarn, "op")

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelWarn, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	var stderr bytes.Buffer

	logger, closer, err := newLogger(dir, "test-op", slog.LevelWarn, &stderr)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	logger.Info("scan started", "drive", "A")
	logger.Warn("capacity probe failed", "drive", "A")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	file := string(data)
	if !strings.Contains(file, "scan started") || !strings.Contains(file, "capacity probe failed") {
		t.Errorf("log file missing records: %q", file)
	}
	if !strings.Contains(file, "\ttest-op\t") {
		t.Errorf("log file missing op id: %q", file)
	}

	if strings.Contains(stderr.String(), "scan started") {
		t.Errorf("info record reached stderr: %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "capacity probe failed") {
		t.Errorf("warn record missing from stderr: %q", stderr.String())
	}
}
