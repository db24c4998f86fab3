package logging

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// newTestLogger creates a file logger inside a temp dir and returns it with its path
func newTestLogger(t *testing.T, config FileLoggerConfig) (*FileLogger, string) {
	t.Helper()
	if config.Path == "" {
		config.Path = filepath.Join(t.TempDir(), "filescout.log")
	}
	logger, err := NewFileLogger(config)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	return logger, config.Path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestNewFileLogger_CreatesDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "scan.log")
	logger, _ := newTestLogger(t, FileLoggerConfig{Path: logPath, Format: FormatText})
	defer logger.Close()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLogger_LogLevels(t *testing.T) {
	tests := []struct {
		level   Level
		present []string
		absent  []string
	}{
		{InfoLevel, []string{"info message", "warn message", "error message"}, []string{"debug message"}},
		{DebugLevel, []string{"debug message", "info message"}, nil},
		{ErrorLevel, []string{"error message"}, []string{"info message", "warn message"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatText, Level: tt.level})
			ctx := context.Background()

			logger.Debug(ctx, "debug message", nil)
			logger.Info(ctx, "info message", nil)
			logger.Warn(ctx, "warn message", nil)
			logger.Error(ctx, "error message", nil, nil)
			logger.Close()

			content := readLog(t, path)
			for _, s := range tt.present {
				if !strings.Contains(content, s) {
					t.Errorf("%q should be present", s)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(content, s) {
					t.Errorf("%q should be filtered", s)
				}
			}
		})
	}
}

func TestFileLogger_TextFormat(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatText, Level: InfoLevel})
	logger.Error(context.Background(), "cannot open file", errors.New("permission denied"),
		Fields{"path": "/srv/a.txt", "attempt": 2})
	logger.Close()

	line := strings.TrimSpace(readLog(t, path))
	if !strings.Contains(line, "[ERROR] cannot open file") {
		t.Errorf("missing level/message in %q", line)
	}
	if !strings.Contains(line, `error="permission denied"`) {
		t.Errorf("missing error in %q", line)
	}
	if !strings.HasSuffix(line, "attempt=2 path=/srv/a.txt") {
		t.Errorf("fields should be sorted by key: %q", line)
	}
}

func TestFileLogger_JSONWithFields(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatJSON, Level: InfoLevel})

	child := logger.WithFields(Fields{"session": "abc"})
	child.Info(context.Background(), "skipped ignored directory", Path("/mnt/backup"))
	logger.Close()

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(readLog(t, path)), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}

	if entry["session"] != "abc" {
		t.Errorf("session = %v, want abc", entry["session"])
	}
	if entry[FieldPath] != "/mnt/backup" {
		t.Errorf("path = %v, want /mnt/backup", entry[FieldPath])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{
		Format:     FormatText,
		Level:      InfoLevel,
		MaxSize:    100,
		MaxBackups: 2,
	})
	ctx := context.Background()

	// children share the file, so rotation seen by one applies to all
	child := logger.WithFields(Fields{"component": "walker"})
	for i := 0; i < 20; i++ {
		logger.Info(ctx, "a message long enough to push the log past its size limit", nil)
		child.Info(ctx, "another message long enough to push the log past its limit", nil)
	}
	logger.Close()

	for _, p := range []string{path, path + ".1", path + ".2"} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			t.Errorf("%s should exist after rotation", filepath.Base(p))
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("only MaxBackups backups should be kept")
	}
}

func TestFileLogger_WriteAfterClose(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatText})
	logger.Close()
	logger.Info(context.Background(), "late message", nil)

	if strings.Contains(readLog(t, path), "late message") {
		t.Error("messages after Close should be dropped")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestFileLogger_ConcurrentWrites(t *testing.T) {
	logger, path := newTestLogger(t, FileLoggerConfig{Format: FormatText, Level: InfoLevel})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			l := logger.WithFields(Fields{"goroutine": id})
			for j := 0; j < 100; j++ {
				l.Info(ctx, "concurrent message", Fields{"iteration": j})
			}
		}(i)
	}
	wg.Wait()
	logger.Close()

	lines := strings.Split(strings.TrimSpace(readLog(t, path)), "\n")
	if len(lines) != 1000 {
		t.Errorf("expected 1000 log lines, got %d", len(lines))
	}
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", nil)
	logger.Warn(ctx, "warn", nil)
	logger.Error(ctx, "error", nil, nil)

	if logger.WithFields(Fields{"key": "value"}) == nil {
		t.Error("WithFields should return a logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{"Error", ErrorLevel},
		{"unknown", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := ParseLevel(tt.input); result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if WarnLevel.String() != "WARN" {
		t.Errorf("WarnLevel.String() = %q", WarnLevel.String())
	}
	if Level(99).String() != "UNKNOWN" {
		t.Errorf("Level(99).String() = %q", Level(99).String())
	}
}
