package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriter_WritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "ridehail", "info")

	log.Info("ride created", "ride_id", "r-1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["service"] != "ridehail" {
		t.Errorf("expected service attribute, got %v", record["service"])
	}
	if record["ride_id"] != "r-1" {
		t.Errorf("expected ride_id attribute, got %v", record["ride_id"])
	}
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "ridehail", "warn")

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}

	log.Warn("kept")
	if buf.Len() == 0 {
		t.Error("expected warn record to be written")
	}
}
