package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "us number with formatting",
			input: "(212) 555-0123",
			want:  "+12125550123",
		},
		{
			name:  "already e164",
			input: "+12125550123",
			want:  "+12125550123",
		},
		{
			name:  "israeli mobile",
			input: "+972 52-123-4567",
			want:  "+972521234567",
		},
		{
			name:  "uk number",
			input: "+44 20 7946 0958",
			want:  "+442079460958",
		},
		{
			name:  "garbage",
			input: "not a phone",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
