package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sotuphap-angiang/vbtrack/internal/config"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name string
		want logrus.Level
	}{
		{"silent", logrus.PanicLevel},
		{"error", logrus.ErrorLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"info", logrus.InfoLevel},
		{"debug", logrus.DebugLevel},
		{"trace", logrus.TraceLevel},
		{"", logrus.InfoLevel},
		{"loud", logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Level(tt.name); got != tt.want {
				t.Errorf("Level(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)
	l.WithField("sheet", "NQ can xu ly").Info("sheet imported")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["sheet"] != "NQ can xu ly" {
		t.Errorf("sheet field = %v", entry["sheet"])
	}
	if entry["msg"] != "sheet imported" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestNewWithWriter_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.LogConfig{Level: "warn", Format: "text"}, &buf)
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.IsLevelEnabled(logrus.ErrorLevel) {
		t.Error("Discard logger should not enable error level")
	}
}
