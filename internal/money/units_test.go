package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToSmallestUnit(t *testing.T) {
	testCases := []struct {
		name     string
		amount   string
		decimals int
		want     string
		wantErr  bool
	}{
		{name: "whole token", amount: "1", decimals: 18, want: "1000000000000000000"},
		{name: "fractional", amount: "1.5", decimals: 6, want: "1500000"},
		{name: "zero decimals", amount: "250", decimals: 0, want: "250"},
		{name: "zero amount", amount: "0", decimals: 18, want: "0"},
		{name: "full precision", amount: "0.000001", decimals: 6, want: "1"},
		{name: "too many places", amount: "0.0000001", decimals: 6, wantErr: true},
		{name: "negative amount", amount: "-1", decimals: 6, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToSmallestUnit(decimal.RequireFromString(tc.amount), tc.decimals)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFromSmallestUnit(t *testing.T) {
	got, err := FromSmallestUnit("1500000", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("got %s, want 1.5", got)
	}

	if _, err := FromSmallestUnit("not-a-number", 6); err == nil {
		t.Fatal("expected error for malformed input")
	}
	if _, err := FromSmallestUnit("-5", 6); err == nil {
		t.Fatal("expected error for negative input")
	}
}

func TestRoundTrip(t *testing.T) {
	units := []string{"0", "1", "999", "1000000", "123456789012345678901234567890"}
	for _, u := range units {
		for _, d := range []int{0, 2, 6, 18} {
			human, err := FromSmallestUnit(u, d)
			if err != nil {
				t.Fatalf("FromSmallestUnit(%q, %d): %v", u, d, err)
			}
			back, err := ToSmallestUnit(human, d)
			if err != nil {
				t.Fatalf("ToSmallestUnit(%s, %d): %v", human, d, err)
			}
			if back != u {
				t.Fatalf("round trip %q with %d decimals: got %q", u, d, back)
			}
		}
	}
}

func TestCmp(t *testing.T) {
	if c, _ := Cmp("100", "99"); c != 1 {
		t.Fatalf("Cmp(100, 99) = %d, want 1", c)
	}
	if c, _ := Cmp("5", "5"); c != 0 {
		t.Fatalf("Cmp(5, 5) = %d, want 0", c)
	}
	if c, _ := Cmp("5", "50"); c != -1 {
		t.Fatalf("Cmp(5, 50) = %d, want -1", c)
	}
	if _, err := Cmp("x", "1"); err == nil {
		t.Fatal("expected error for malformed operand")
	}
}
