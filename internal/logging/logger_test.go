package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name          string
		level         LogLevel
		expectedLevel slog.Level
	}{
		{
			name:          "Debug level",
			level:         LevelDebug,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "Info level",
			level:         LevelInfo,
			expectedLevel: slog.LevelInfo,
		},
		{
			name:          "Warn level",
			level:         LevelWarn,
			expectedLevel: slog.LevelWarn,
		},
		{
			name:          "Error level",
			level:         LevelError,
			expectedLevel: slog.LevelError,
		},
		{
			name:          "Invalid level defaults to Info",
			level:         LogLevel("invalid"),
			expectedLevel: slog.LevelInfo,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseLevel(tc.level); got != tc.expectedLevel {
				t.Errorf("ParseLevel(%q) = %v, want %v", tc.level, got, tc.expectedLevel)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	// Save original logger to restore later
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
		slog.SetDefault(originalLogger)
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelDebug)

	if defaultLogger == nil {
		t.Fatal("defaultLogger is nil after setup")
	}

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message", "key", "value")

	output := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message", "key=value"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestSetupLoggerFiltersBelowLevel(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
		slog.SetDefault(originalLogger)
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelError)

	Info("should be dropped")
	Error("should be kept")

	output := buf.String()
	if strings.Contains(output, "should be dropped") {
		t.Errorf("Info message should be filtered at error level, got: %s", output)
	}
	if !strings.Contains(output, "should be kept") {
		t.Errorf("Error message missing from output: %s", output)
	}
}

func TestMaskSensitive(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Empty string",
			input:    "",
			expected: "<not set>",
		},
		{
			name:     "Short string",
			input:    "abc",
			expected: "<set>",
		},
		{
			name:     "Exactly 4 characters",
			input:    "abcd",
			expected: "<set>",
		},
		{
			name:     "Token-like string",
			input:    "2Dn5j8fk39Dkf0s",
			expected: "2Dn5...***",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := MaskSensitive(tc.input)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}
