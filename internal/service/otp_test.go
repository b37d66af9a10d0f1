package service

import (
	"testing"
	"time"
)

func fixedHour(hour int) func() time.Time {
	t := time.Date(2024, 3, 14, hour, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestOTPGenerator_SixDigits(t *testing.T) {
	t.Parallel()

	gen, err := NewOTPGenerator(6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		if code[0] == '0' {
			t.Fatalf("code has leading zero: %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
		seen[code] = true
	}

	if len(seen) < 400 {
		t.Errorf("expected mostly distinct codes, got %d of 500", len(seen))
	}
}

func TestOTPGenerator_RejectsBadLength(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -1, 19} {
		if _, err := NewOTPGenerator(n); err == nil {
			t.Errorf("expected error for length %d", n)
		}
	}
}

func TestOTPGenerator_SingleDigit(t *testing.T) {
	t.Parallel()

	gen, err := NewOTPGenerator(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	code, err := gen.Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(code) != 1 {
		t.Errorf("expected one digit, got %q", code)
	}
}
