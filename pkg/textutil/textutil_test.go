package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "Hello World", []string{"hello", "world"}},
		{"punctuation", "what's my name?!", []string{"what's", "my", "name"}},
		{"hyphenated", "state-of-the-art design", []string{"state-of-the-art", "design"}},
		{"digits", "I am 30 years old", []string{"i", "am", "30", "years", "old"}},
		{"empty", "", nil},
		{"only punctuation", "?!., -", []string{"-"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.in)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestContainsEither(t *testing.T) {
	assert.True(t, ContainsEither("comput", "computer"))
	assert.True(t, ContainsEither("computer", "comput"))
	assert.True(t, ContainsEither("same", "same"))
	assert.False(t, ContainsEither("cat", "dog"))
	assert.False(t, ContainsEither("", "anything"))
	assert.False(t, ContainsEither("anything", ""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello", 3))
	assert.Equal(t, "héll...", Truncate("héllo wörld", 4))
}
