package ws

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestIsValidAnalysisGroup(t *testing.T) {
	tests := []struct {
		group string
		want  bool
	}{
		{"SPY_analysis", true},
		{"QQQ_analysis", true},
		{"BRK.B_analysis", true},
		{"spy_analysis", false},
		{"SPY", false},
		{"_analysis", false},
		{"SPY_quotes", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidAnalysisGroup(tt.group); got != tt.want {
			t.Errorf("IsValidAnalysisGroup(%q) = %v, want %v", tt.group, got, tt.want)
		}
	}
}

func TestEncoder_RoundTrip(t *testing.T) {
	enc, err := NewEncoder()
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	defer enc.Close()

	frame := []byte(`{"type":"data","group":"SPY_analysis","payload":{"spot":405.12}}`)
	compressed := enc.Compress(frame)

	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	got, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Errorf("round trip mismatch: %s", got)
	}
}
