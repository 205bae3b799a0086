package app

import "testing"

func TestDetermineLogLevel(t *testing.T) {
	cases := []struct {
		name   string
		config Config
		want   string
	}{
		{"Default", Config{}, "info"},
		{"Verbose", Config{Verbose: true}, "debug"},
		{"Quiet", Config{Quiet: true}, "warn"},
		{"QuietBeatsVerbose", Config{Verbose: true, Quiet: true}, "warn"},
		{"ExplicitWins", Config{Verbose: true, LogLevel: "error"}, "error"},
		{"InvalidFallsBack", Config{LogLevel: "shouty"}, "info"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := determineLogLevel(&tc.config); got != tc.want {
				t.Errorf("Expected level %q, got %q", tc.want, got)
			}
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		if got := validateLogLevel(level); got != level {
			t.Errorf("Expected %q to validate, got %q", level, got)
		}
	}
	if got := validateLogLevel("bogus"); got != "info" {
		t.Errorf("Expected invalid level to fall back to info, got %q", got)
	}
}
