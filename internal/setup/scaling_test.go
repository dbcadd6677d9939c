package setup

import "testing"

func TestValidateFactor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"1.0", false},
		{"2.0", false},
		{"0.6", false},
		{"3", false},
		{"0", true},
		{"-1.5", true},
		{"", true},
		{"fast", true},
	}

	for _, tt := range tests {
		err := validateFactor(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateFactor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestFormatFactor(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.0, "2"},
		{1.5, "1.5"},
		{0.6, "0.6"},
		{0, "1.0"},
		{-3, "1.0"},
	}

	for _, tt := range tests {
		if got := formatFactor(tt.in); got != tt.want {
			t.Errorf("formatFactor(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFactorRoundTrip(t *testing.T) {
	for _, v := range []float64{1.0, 1.5, 2.0, 0.6, 3.1415} {
		if got := parseFactor(formatFactor(v)); got != v {
			t.Errorf("parseFactor(formatFactor(%v)) = %v", v, got)
		}
	}
}
