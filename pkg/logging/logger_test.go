// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{" Error ", LevelError, false},
		{"trace", LevelInfo, true},
		{"fatal", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
		{Level(-1), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := tt.level.toSlogLevel()
			if got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_Constants(t *testing.T) {
	// Verify ordering: Debug < Info < Warn < Error
	if LevelDebug >= LevelInfo {
		t.Error("LevelDebug should be < LevelInfo")
	}
	if LevelInfo >= LevelWarn {
		t.Error("LevelInfo should be < LevelWarn")
	}
	if LevelWarn >= LevelError {
		t.Error("LevelWarn should be < LevelError")
	}
}

// =============================================================================
// Logger Constructor Tests
// =============================================================================

func TestNew_DefaultConfig(t *testing.T) {
	logger := New(Config{})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.slog == nil {
		t.Error("logger.slog is nil")
	}
	defer logger.Close()
}

func TestNew_AllLevels(t *testing.T) {
	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for _, level := range levels {
		t.Run(level.String(), func(t *testing.T) {
			logger := New(Config{Level: level, Quiet: true})
			if logger == nil {
				t.Fatal("New() returned nil")
			}
			defer logger.Close()
		})
	}
}

func TestNew_QuietMode(t *testing.T) {
	logger := New(Config{Quiet: true})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	defer logger.Close()

	// Should not panic when logging in quiet mode
	logger.Info("quiet message")
}

func TestNew_WithLogDir(t *testing.T) {
	tmpDir := t.TempDir()

	logger := New(Config{
		LogDir:  tmpDir,
		Service: "testsvc",
		Quiet:   true,
	})
	defer logger.Close()

	if logger.file == nil {
		t.Fatal("Expected log file to be opened")
	}

	logger.Info("file message", "key", "value")

	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	found := false
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "testsvc_") && strings.HasSuffix(f.Name(), ".log") {
			found = true
		}
	}
	if !found {
		t.Error("Expected log file with 'testsvc_' prefix")
	}
}

func TestNew_WithLogDir_NoService(t *testing.T) {
	tmpDir := t.TempDir()

	logger := New(Config{
		LogDir: tmpDir,
		Quiet:  true,
	})
	defer logger.Close()

	// Should use "kingraph" as default service name
	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "kingraph_") {
			return
		}
	}
	t.Error("Expected log file with 'kingraph_' prefix")
}

func TestNew_WithLogDir_InvalidPath(t *testing.T) {
	// Use a path that cannot be created (file in the way)
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0640); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Should not fail; file logging is silently skipped
	logger := New(Config{
		LogDir: filepath.Join(blocker, "logs"),
		Quiet:  true,
	})
	defer logger.Close()

	if logger.file != nil {
		t.Error("Expected no log file for invalid path")
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("Default() returned nil")
	}
	defer logger.Close()

	if logger.config.Service != "kingraph" {
		t.Errorf("Default service = %v, want kingraph", logger.config.Service)
	}
	if logger.config.Level != LevelInfo {
		t.Errorf("Default level = %v, want LevelInfo", logger.config.Level)
	}
}

// =============================================================================
// Logging Method Tests
// =============================================================================

// captureLogger builds a logger writing JSON to the given buffer.
func captureLogger(buf *bytes.Buffer, level Level) *Logger {
	opts := &slog.HandlerOptions{Level: level.toSlogLevel()}
	return &Logger{
		slog:   slog.New(slog.NewJSONHandler(buf, opts)),
		config: Config{Level: level},
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogger(&buf, LevelDebug)

	logger.Debug("debug msg")
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error("error msg")

	out := buf.String()
	for _, want := range []string{"debug msg", "info msg", "warn msg", "error msg"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogger(&buf, LevelWarn)

	logger.Debug("filtered debug")
	logger.Info("filtered info")
	logger.Warn("kept warn")
	logger.Error("kept error")

	out := buf.String()
	if strings.Contains(out, "filtered debug") || strings.Contains(out, "filtered info") {
		t.Error("Debug/Info should be filtered at LevelWarn")
	}
	if !strings.Contains(out, "kept warn") || !strings.Contains(out, "kept error") {
		t.Error("Warn/Error should pass at LevelWarn")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogger(&buf, LevelInfo)

	treeLogger := logger.With("site", "S1", "tree", 42)
	treeLogger.Info("graph built")

	out := buf.String()
	if !strings.Contains(out, "S1") {
		t.Error("child logger output missing site attribute")
	}
	if !strings.Contains(out, "42") {
		t.Error("child logger output missing tree attribute")
	}

	// Parent logger unaffected
	buf.Reset()
	logger.Info("plain")
	if strings.Contains(buf.String(), "S1") {
		t.Error("parent logger should not carry child attributes")
	}
}

func TestLogger_Slog(t *testing.T) {
	logger := New(Config{Quiet: true})
	defer logger.Close()

	if logger.Slog() == nil {
		t.Error("Slog() returned nil")
	}
}

func TestLogger_Close_NoResources(t *testing.T) {
	logger := New(Config{Quiet: true})
	if err := logger.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}

func TestLogger_Close_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	logger := New(Config{
		LogDir:  tmpDir,
		Service: "closesvc",
		Quiet:   true,
	})

	logger.Info("before close")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}

func TestLogger_ConcurrentUse(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	safeBuf := &lockedWriter{buf: &buf, mu: &mu}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := &Logger{
		slog:   slog.New(slog.NewJSONHandler(safeBuf, opts)),
		config: Config{Level: LevelInfo},
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				logger.Info("concurrent", "worker", n, "iter", j)
			}
		}(i)
	}
	wg.Wait()

	mu.Lock()
	lines := strings.Count(buf.String(), "\n")
	mu.Unlock()
	if lines != 200 {
		t.Errorf("expected 200 log lines, got %d", lines)
	}
}

type lockedWriter struct {
	buf *bytes.Buffer
	mu  *sync.Mutex
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// =============================================================================
// Multi-Handler Tests
// =============================================================================

func TestMultiHandler_Enabled(t *testing.T) {
	debugOpts := &slog.HandlerOptions{Level: slog.LevelDebug}
	warnOpts := &slog.HandlerOptions{Level: slog.LevelWarn}

	var buf bytes.Buffer
	h1 := slog.NewTextHandler(&buf, debugOpts)
	h2 := slog.NewTextHandler(&buf, warnOpts)

	mh := &multiHandler{handlers: []slog.Handler{h1, h2}}

	// Debug level: should be enabled (h1 accepts it)
	if !mh.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Debug should be enabled")
	}

	// Warn level: both accept it
	if !mh.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("Warn should be enabled")
	}
}

func TestMultiHandler_Enabled_NoneEnabled(t *testing.T) {
	opts := &slog.HandlerOptions{Level: slog.LevelError}
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, opts)

	mh := &multiHandler{handlers: []slog.Handler{h}}

	if mh.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Debug should not be enabled")
	}
}

func TestMultiHandler_Handle(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	h1 := slog.NewTextHandler(&buf1, opts)
	h2 := slog.NewTextHandler(&buf2, opts)

	mh := &multiHandler{handlers: []slog.Handler{h1, h2}}

	record := slog.Record{}
	record.Level = slog.LevelInfo
	record.Message = "test message"

	err := mh.Handle(context.Background(), record)
	if err != nil {
		t.Errorf("Handle() returned error: %v", err)
	}

	// Both buffers should have content
	if buf1.Len() == 0 {
		t.Error("buf1 should have content")
	}
	if buf2.Len() == 0 {
		t.Error("buf2 should have content")
	}
}

func TestMultiHandler_Handle_LevelFiltering(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewTextHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelDebug})
	h2 := slog.NewTextHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelError})

	mh := &multiHandler{handlers: []slog.Handler{h1, h2}}

	record := slog.Record{}
	record.Level = slog.LevelInfo
	record.Message = "info message"

	if err := mh.Handle(context.Background(), record); err != nil {
		t.Errorf("Handle() returned error: %v", err)
	}

	// Only the debug handler should have content
	if buf1.Len() == 0 {
		t.Error("debug handler should have content")
	}
	if buf2.Len() != 0 {
		t.Error("error handler should be empty for info record")
	}
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	h := slog.NewTextHandler(&buf, opts)

	mh := &multiHandler{handlers: []slog.Handler{h}}
	withAttrs := mh.WithAttrs([]slog.Attr{slog.String("site", "S1")})

	record := slog.Record{}
	record.Level = slog.LevelInfo
	record.Message = "attr test"

	if err := withAttrs.Handle(context.Background(), record); err != nil {
		t.Errorf("Handle() returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "site=S1") {
		t.Error("output missing added attribute")
	}
}

func TestMultiHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	h := slog.NewTextHandler(&buf, opts)

	mh := &multiHandler{handlers: []slog.Handler{h}}
	grouped := mh.WithGroup("search")

	if grouped == nil {
		t.Fatal("WithGroup returned nil")
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/logs", filepath.Join(home, "logs")},
		{"~/.kingraph/logs", filepath.Join(home, ".kingraph/logs")},
		{"~", home},
		{"/var/log", "/var/log"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
