package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0", 0, true}, // zero amount is valid
		{"0.00", 0, true},
		{"0.01", 1, true},
		{"825.50", 82550, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"92233720368547757.99", 9223372036854775799, true}, // largest representable amount
		{"92233720368547758.99", 0, false},                  // would wrap past MaxInt64
		{"99999999999999999999", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseHoursToTenths(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"0", 0, true},
		{"10", 100, true},
		{"10.5", 105, true},
		{"10,5", 105, true},
		{"0.25", 3, true}, // half-up on second decimal
		{"0.24", 2, true},
		{"922337203685477579.9", 9223372036854775799, true}, // largest representable duration
		{"922337203685477580.9", 0, false},                  // would wrap past MaxInt64
		{"-1", 0, false},
		{"x", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseHoursToTenths(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{82550, "825.50"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestHoursString(t *testing.T) {
	cases := []struct {
		tenths int64
		want   string
	}{
		{0, "0.0"},
		{105, "10.5"},
		{150, "15.0"},
		{-5, "-0.5"},
	}
	for _, tc := range cases {
		if got := (Hours{Tenths: tc.tenths}).String(); got != tc.want {
			t.Fatalf("Hours{%d}.String() = %q, want %q", tc.tenths, got, tc.want)
		}
	}
}
