package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"50.00", 5000, false},
		{"50", 5000, false},
		{"0.01", 1, false},
		{"12.5", 1250, false},
		{"0", 0, true},
		{"-3.00", 0, true},
		{"1.005", 0, true},
	}
	for _, c := range cases {
		d, err := decimal.NewFromString(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		got, err := ToCents(d)
		if c.wantErr {
			if err == nil {
				t.Errorf("ToCents(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ToCents(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ToCents(%q): got %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFromCents(t *testing.T) {
	if got := FromCents(5000); got != "50.00" {
		t.Errorf("FromCents(5000): got %q, want \"50.00\"", got)
	}
	if got := FromCents(1); got != "0.01" {
		t.Errorf("FromCents(1): got %q, want \"0.01\"", got)
	}
	if got := FromCents(0); got != "0.00" {
		t.Errorf("FromCents(0): got %q, want \"0.00\"", got)
	}
}
