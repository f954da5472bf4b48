package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  Maria Santos  ",
			want:  "Maria Santos",
		},
		{
			name:  "multiple spaces",
			input: "Maria    Santos",
			want:  "Maria Santos",
		},
		{
			name:  "tabs and newlines",
			input: "Maria\t\nSantos",
			want:  "Maria Santos",
		},
		{
			name:  "preserve accents and apostrophes",
			input: " José O'Brien ",
			want:  "José O'Brien",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(0917) 123-4567", "09171234567"},
		{"+63 917 123 4567", "639171234567"},
		{"abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DigitsOnly(tt.input); got != tt.want {
			t.Errorf("DigitsOnly(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
