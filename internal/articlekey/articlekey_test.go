package articlekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Normalizes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://en.wikipedia.org/wiki/Go_(programming_language)", "https://en.wikipedia.org/wiki/Go_(programming_language)"},
		{"http://en.wikipedia.org/wiki/Gopher", "https://en.wikipedia.org/wiki/Gopher"},
		{"HTTPS://EN.Wikipedia.ORG/wiki/Gopher", "https://en.wikipedia.org/wiki/Gopher"},
		{"https://en.m.wikipedia.org/wiki/Gopher", "https://en.wikipedia.org/wiki/Gopher"},
		{"https://m.wikipedia.org/wiki/Gopher", "https://wikipedia.org/wiki/Gopher"},
		{"https://M.Example.org/wiki/Gopher", "https://example.org/wiki/Gopher"},
		{"https://m.org/wiki/Gopher", "https://m.org/wiki/Gopher"},
		{"https://en.wikipedia.m/wiki/Gopher", "https://en.wikipedia.m/wiki/Gopher"},
		{"https://en.wikipedia.org/wiki/Blue%20Whale", "https://en.wikipedia.org/wiki/Blue_Whale"},
		{"https://en.wikipedia.org/wiki/Blue Whale", "https://en.wikipedia.org/wiki/Blue_Whale"},
		{"https://en.wikipedia.org/wiki/Gopher?action=view#History", "https://en.wikipedia.org/wiki/Gopher"},
		{"https://bücher.example/wiki/Buch", "https://xn--bcher-kva.example/wiki/Buch"},
		{"  https://en.wikipedia.org/wiki/Gopher  ", "https://en.wikipedia.org/wiki/Gopher"},
	}

	for _, tc := range tests {
		got, ok := Key(tc.in)
		assert.True(t, ok, "key for %q", tc.in)
		assert.Equal(t, tc.want, got, "key for %q", tc.in)
	}
}

func TestKey_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a url",
		"ftp://example.org/file",
		"https:///wiki/NoHost",
		"https://en.wikipedia.org",
		"https://en.wikipedia.org/",
		"https://exa mple.org/wiki/Space",
		"mailto:someone@example.org",
	}

	for _, in := range inputs {
		got, ok := Key(in)
		assert.False(t, ok, "expected no key for %q", in)
		assert.Empty(t, got)
	}
}

func TestKey_Deterministic(t *testing.T) {
	a, okA := Key("http://en.m.wikipedia.org/wiki/Blue%20Whale#Diet")
	b, okB := Key("https://EN.wikipedia.org/wiki/Blue_Whale")
	assert.True(t, okA)
	assert.True(t, okB)
	assert.Equal(t, a, b)
}
