package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text unchanged", in: "Band rehearsal", want: "Band rehearsal"},
		{name: "trims whitespace", in: "  Recording  ", want: "Recording"},
		{name: "strips script", in: "Mixing<script>alert('x')</script>", want: "Mixing"},
		{name: "strips tags keeps text", in: "<b>Returned</b> 2x", want: "Returned 2x"},
		{name: "keeps ampersand", in: "Drums & bass", want: "Drums & bass"},
		{name: "caps length", in: "abcdef", max: 3, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in, tt.max); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
