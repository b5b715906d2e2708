package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainMarkdown(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"**Coffee** is _popular_ in [Brazil](https://example.com)", "Coffee is popular in Brazil"},
		{"Use `go test` daily", "Use go test daily"},
		{"Plain text, nothing special.", "Plain text, nothing special."},
		{"line one\nline two", "line one line two"},
		{"  spaced   out  ", "spaced out"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlainMarkdown(tt.in), "input %q", tt.in)
	}
}

func TestPlainMarkdown_KeepsBlockMarkersAndText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"ordered list marker", "2020. The pandemic year", "2020. The pandemic year"},
		{"ordered paren marker", "3) Third wave", "3) Third wave"},
		{"plus list marker", "+ 5% growth in exports", "+ 5% growth in exports"},
		{"dash list marker", "- Bullet with dash", "- Bullet with dash"},
		{"star list marker", "* starred point", "* starred point"},
		{"heading marker", "# of users doubled", "# of users doubled"},
		{"quote marker", "> not a quote", "> not a quote"},
		{"thematic break", "---", "---"},
		{"star break", "***", "***"},
		{"generic type", "Use Vec<T> for generic buffers", "Use Vec<T> for generic buffers"},
		{"comparison", "Latency < 10ms when x>3", "Latency < 10ms when x>3"},
		{"html tags stripped", "<b>Bold</b> move", "Bold move"},
		{"angle inside code", "Call `f<T>()` once", "Call f<T>() once"},
		{"emphasis after marker", "1. **First** step", "1. First step"},
		{"only markup falls back", "<br>", "<br>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainMarkdown(tt.in))
		})
	}
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Coffee & tea", StripHTML("<b>Coffee</b> &amp; <i>tea</i>"))
	assert.Equal(t, "no markup", StripHTML("no markup"))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Espresso is strong", Clean("<p>**Espresso** is strong</p>"))
}
