package formatting_test

import (
	"testing"

	"github.com/JaimeStill/stark/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"2048", 2048, false},
		{"512B", 512, false},
		{"1KB", 1024, false},
		{"10MB", 10 << 20, false},
		{"10mb", 10 << 20, false},
		{"10 MiB", 10 << 20, false},
		{"1.5GB", 3 << 29, false},
		{"  4 kb ", 4096, false},
		{"0", 0, false},
		{"", 0, true},
		{"MB", 0, true},
		{"-1MB", 0, true},
		{"7XX", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 1, "0 B"},
		{900, 1, "900 B"},
		{1024, 0, "1 KB"},
		{1536, 1, "1.5 KB"},
		{10 << 20, 0, "10 MB"},
		{-2048, 0, "-2 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
				t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
			}
		})
	}
}

func TestFormatParseAgree(t *testing.T) {
	for _, n := range []int64{1, 1 << 10, 3 << 20, 5 << 30} {
		parsed, err := formatting.ParseBytes(formatting.FormatBytes(n, 0))
		if err != nil {
			t.Fatalf("ParseBytes: %v", err)
		}
		if parsed != n {
			t.Errorf("round trip %d = %d", n, parsed)
		}
	}
}
