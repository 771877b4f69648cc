package cmdutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	if l := NewLogger(&buf, true, true); l.GetLevel() != logrus.WarnLevel {
		t.Fatalf("quiet should win, got %v", l.GetLevel())
	}
	if l := NewLogger(&buf, false, true); l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("verbose: got %v", l.GetLevel())
	}
	l := NewLogger(&buf, false, false)
	l.WithField("stage", "align").Info("started")
	if !strings.Contains(buf.String(), "stage=align") {
		t.Fatalf("missing field in %q", buf.String())
	}
}

func TestWarnf(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false, false)
	Warnf(l, true, "hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("quiet warn leaked: %q", buf.String())
	}
	Warnf(l, false, "shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") || !strings.Contains(buf.String(), "level=warning") {
		t.Fatalf("warn output: %q", buf.String())
	}
	Warnf(nil, false, "no logger")
}
