package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)

	l.Info("server", "started", map[string]interface{}{"tools": 10})

	var event map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if event["component"] != "server" {
		t.Errorf("component: got %v, want server", event["component"])
	}
	if event["message"] != "started" {
		t.Errorf("message: got %v, want started", event["message"])
	}
	if event["tools"] != float64(10) {
		t.Errorf("tools field: got %v, want 10", event["tools"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.WarnLevel)

	l.Debug("core", "hidden", nil)
	l.Info("core", "hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("events below level were written: %q", buf.String())
	}

	l.Error("core", errors.New("boom"), nil)
	if !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Errorf("error event missing: %q", buf.String())
	}
}

func TestLogger_Nil(t *testing.T) {
	var l *Logger
	// Must not panic.
	l.Debug("core", "msg", nil)
	l.Info("core", "msg", nil)
	l.Warning("core", "msg", nil)
	l.Error("core", errors.New("x"), nil)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"loud", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error: %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}
