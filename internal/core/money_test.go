package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestLooseAmount(t *testing.T) {
	cases := map[string]string{
		`60`:     "60",
		`"42.5"`: "42.5",
		`-12`:    "-12",
		`null`:   "0",
		`"NaN"`:  "0",
		`true`:   "0",
		``:       "0",
	}
	for in, want := range cases {
		if got := LooseAmount(in); !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("LooseAmount(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	cases := map[string]string{
		"1200":     "$1,200.00",
		"0":        "$0.00",
		"9.5":      "$9.50",
		"1234.567": "$1,234.57",
		"-45":      "-$45.00",
	}
	for in, want := range cases {
		if got := FormatUSD(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatUSD(%s) = %q, want %q", in, got, want)
		}
	}
}
