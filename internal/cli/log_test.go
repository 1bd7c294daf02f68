package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level   log.Level
		debug   bool
		wantOut bool
	}{
		{log.InfoLevel, false, true},
		{log.InfoLevel, true, false},
		{log.DebugLevel, true, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := newLogger(&buf, tt.level)
		if tt.debug {
			logger.Debug("stage", "name", "snap")
		} else {
			logger.Info("stage", "name", "snap")
		}
		if got := buf.Len() > 0; got != tt.wantOut {
			t.Errorf("level %v, debug=%v: wrote output = %v, want %v", tt.level, tt.debug, got, tt.wantOut)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")

	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("output = %q", out)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("built network", "nodes", 3)

	for _, want := range []string{"built network", "nodes=3", "elapsed="} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("done() output %q missing %q", buf.String(), want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield the default logger")
	}

	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), custom)) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}
