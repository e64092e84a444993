package obslog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New("json", slog.LevelInfo, &buf)
	l.Info("hello", "key", "value")

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v (got %q)", err, buf.String())
	}
	if decoded["msg"] != "hello" || decoded["key"] != "value" {
		t.Errorf("decoded = %v, want msg=hello key=value", decoded)
	}
}

func TestNewTextFormatDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New("text", slog.LevelInfo, &buf)
	l.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("output = %q, want it to contain hello", buf.String())
	}
}

func TestSetAndL(t *testing.T) {
	var buf bytes.Buffer
	custom := New("text", slog.LevelInfo, &buf)
	Set(custom)
	if L() != custom {
		t.Error("L() did not return the logger set by Set()")
	}
	L().Info("via global")
	if !strings.Contains(buf.String(), "via global") {
		t.Errorf("output = %q, want it to contain 'via global'", buf.String())
	}
}

func TestFlashLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	fl := FlashLogger{Logger: New("text", slog.LevelDebug, &buf)}
	fl.Debug("debug msg", "k", "v")
	fl.Info("info msg")
	fl.Error("error msg")

	out := buf.String()
	for _, want := range []string{"debug msg", "info msg", "error msg"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q, got: %s", want, out)
		}
	}
}
