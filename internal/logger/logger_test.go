package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestDomainEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.DebugLevel)

	l.BatchStarted("run-1", "/songs", "/out", 4)
	l.FileConverted("/songs/a.txt", "/out/a.cho")
	l.Skipped("/songs/b.txt", "unchanged")
	l.FileError("/songs/c.txt", errors.New("boom"))
	l.StateError("save", errors.New("disk full"))
	l.ConfigLoaded(".txt", ".cho", 2)
	l.BatchCompleted("run-1", 1, 1, 1, 1500*time.Millisecond)

	output := buf.String()
	for _, want := range []string{
		"batch started", "run_id=run-1", "workers=4",
		"file converted", "dest=/out/a.cho",
		"file skipped", "reason=unchanged",
		"file error", "error=boom",
		"state error", "operation=save",
		"config loaded", "output_ext=.cho",
		"batch completed", "files_converted=1", "duration=1.5s",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q:\n%s", want, output)
		}
	}
}

func TestDebugHiddenAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Skipped("/songs/b.txt", "unchanged")

	if buf.Len() != 0 {
		t.Errorf("expected debug events to be filtered, got:\n%s", buf.String())
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	l, cleanup, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	l.FileConverted("in.txt", "out.cho")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "file converted") {
		t.Errorf("log file missing event:\n%s", data)
	}
}

func TestNewMultiLogger(t *testing.T) {
	var a, b bytes.Buffer
	l := NewMultiLogger(&a, &b)

	l.Info("hello")

	if !strings.Contains(a.String(), "hello") || !strings.Contains(b.String(), "hello") {
		t.Errorf("expected both writers to receive output: %q / %q", a.String(), b.String())
	}
}
