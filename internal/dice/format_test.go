package dice

import "testing"

func TestFormatInt(t *testing.T) {
	cfg := DefaultConfig()

	testCases := []struct {
		n        int64
		atResult bool
		want     string
	}{
		{0, true, "0"},
		{42, true, "42"},
		{-42, false, "-42"},
		{100000000, true, "100000000"},
		{999999999, false, "999999999"},
		{1000000000, true, "1.000000000e+09"},
		{1000000000, false, "(1.000000000e+09)"},
		{-1000000000, true, "-1.000000000e+09"},
		{1234567890123, true, "1.234567890e+12"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			got := formatInt(cfg, tc.n, tc.atResult)
			if got != tc.want {
				t.Errorf("formatInt(%d, %v) = %q, want %q", tc.n, tc.atResult, got, tc.want)
			}
		})
	}
}

func TestFormatIntDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxExponentDigits = 0

	if got := formatInt(cfg, 1000000000, true); got != "1000000000" {
		t.Errorf("Expected plain decimal with exponent disabled, got %q", got)
	}
}

func TestFormatIntInTrace(t *testing.T) {
	// A huge die carries scientific notation through the trace, parenthesized
	// inside brackets and bare at the result slot.
	spec := mustParse(t, "2D2000000000")
	got := spec.Eval(newScript(t, []int64{1999999999, 1}))
	want := "2D2000000000=[(1.999999999e+09)+1]=2.000000000e+09"
	if got.Detail != want {
		t.Errorf("Expected detail %q, got %q", want, got.Detail)
	}
	if got.Result != 2000000000 {
		t.Errorf("Expected result 2000000000, got %d", got.Result)
	}
}

func TestClampDetail(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOutputLength = 5

	if got := clampDetail(cfg, "12345"); got != "12345" {
		t.Errorf("Detail at the cap must pass through, got %q", got)
	}
	if got := clampDetail(cfg, "123456"); got != "{I18N:dice.message.too_long}" {
		t.Errorf("Expected placeholder, got %q", got)
	}
}
