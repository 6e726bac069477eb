package format

import "testing"

func TestNumberToAlphabet(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "A"},
		{2, "C"},
		{25, "Z"},
		{26, "AA"},
		{28, "AC"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
		{-1, ""},
	}
	for _, tc := range cases {
		if got := NumberToAlphabet(tc.n); got != tc.want {
			t.Fatalf("NumberToAlphabet(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestAlphabetToNumber(t *testing.T) {
	cases := []struct {
		alphabet string
		want     int
	}{
		{"A", 0},
		{"c", 2},
		{"Z", 25},
		{"AA", 26},
		{"AC", 28},
		{"aaa", 702},
		{"", -1},
		{"A1", -1},
	}
	for _, tc := range cases {
		if got := AlphabetToNumber(tc.alphabet); got != tc.want {
			t.Fatalf("AlphabetToNumber(%q) = %d, want %d", tc.alphabet, got, tc.want)
		}
	}
}

func TestAlphabetNumberRoundTrip(t *testing.T) {
	for n := 0; n < 1000; n++ {
		if got := AlphabetToNumber(NumberToAlphabet(n)); got != n {
			t.Fatalf("round trip of %d produced %d", n, got)
		}
	}
}

func TestSecondsToClock(t *testing.T) {
	cases := []struct {
		seconds int64
		showDay bool
		want    string
	}{
		{0, false, "00:00:00"},
		{59, false, "00:00:59"},
		{3601, false, "01:00:01"},
		{86400, false, "24:00:00"},
		{86400, true, "1D 00:00:00"},
		{90061, true, "1D 01:01:01"},
		{90061, false, "25:01:01"},
		{-5, false, "--"},
	}
	for _, tc := range cases {
		if got := SecondsToClock(tc.seconds, tc.showDay); got != tc.want {
			t.Fatalf("SecondsToClock(%d, %v) = %q, want %q", tc.seconds, tc.showDay, got, tc.want)
		}
	}
}
