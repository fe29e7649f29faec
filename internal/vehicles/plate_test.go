package vehicles

import "testing"

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" 1234 bcd ", "1234BCD"},
		{"m-1234-ab", "M1234AB"},
		{"1234-BCD", "1234BCD"},
		{"1234BCD", "1234BCD"},
	}
	for _, tt := range tests {
		if got := NormalizePlate(tt.in); got != tt.want {
			t.Errorf("NormalizePlate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
