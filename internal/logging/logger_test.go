package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Infof("loaded %d movies", 12)

	if !strings.Contains(buf.String(), "loaded 12 movies") {
		t.Errorf("output = %q, want it to contain %q", buf.String(), "loaded 12 movies")
	}
}

func TestLoggerSetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := NewLogger(&first)

	l.SetOutput(&second)
	l.Warnf("switched")

	if first.Len() != 0 {
		t.Errorf("first writer got %q, want nothing", first.String())
	}
	if !strings.Contains(second.String(), "switched") {
		t.Errorf("second writer = %q, want it to contain %q", second.String(), "switched")
	}
}

func TestLoggerEnableFile(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	path := filepath.Join(t.TempDir(), "logs", "cineshelf.log")

	if err := l.EnableFile(FileOptions{Path: path}); err != nil {
		t.Fatalf("EnableFile() error = %v", err)
	}
	l.Errorf("delete failed for %s", "m1")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "delete failed for m1") {
		t.Errorf("log file = %q, want it to contain the message", string(data))
	}
	if !strings.Contains(buf.String(), "delete failed for m1") {
		t.Errorf("console = %q, want it to contain the message", buf.String())
	}
}

func TestLoggerEnableFileEmptyPath(t *testing.T) {
	l := NewLogger(&bytes.Buffer{})
	if err := l.EnableFile(FileOptions{}); err != nil {
		t.Errorf("EnableFile(empty) error = %v, want nil", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close() without file error = %v, want nil", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
