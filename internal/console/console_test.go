package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// TestLevel tests verbosity flag mapping
func TestLevel(t *testing.T) {
	tests := []struct {
		name           string
		verbose, quiet bool
		want           log.Level
	}{
		{"default", false, false, log.InfoLevel},
		{"verbose", true, false, log.DebugLevel},
		{"quiet", false, true, log.WarnLevel},
		{"quiet wins", true, true, log.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Level(tt.verbose, tt.quiet); got != tt.want {
				t.Errorf("Level(%v, %v) = %v, want %v", tt.verbose, tt.quiet, got, tt.want)
			}
		})
	}
}

// TestNew tests that the logger honors the level and writer
func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Quiet: true, NoColor: true, Writer: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "entry", "Saves")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("quiet logger wrote info line: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "entry=Saves") {
		t.Errorf("logger output = %q, want warning with fields", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("no-color logger wrote escape codes: %q", out)
	}
}
