package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzer_Words(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		keepNumbers bool
		want        []string
	}{
		{"lower-cased words", "The Quick brown FOX", false, []string{"the", "quick", "brown", "fox"}},
		{"punctuation dropped", "cats, dogs; and (eels)!", false, []string{"cats", "dogs", "and", "eels"}},
		{"apostrophe splits", "don't", false, []string{"don", "t"}},
		{"numbers dropped", "page 42 of 3.5 volumes", false, []string{"page", "of", "volumes"}},
		{"numbers kept", "page 42 of 3.5", true, []string{"page", "42", "of", "3", "5"}},
		{"mixed token split without numbers", "abc123def", false, []string{"abc", "def"}},
		{"mixed token kept with numbers", "abc123def", true, []string{"abc123def"}},
		{"accented letters", "Élan café", false, []string{"élan", "café"}},
		{"empty", "", false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(tt.keepNumbers)
			assert.Equal(t, tt.want, a.Words([]byte(tt.text)))
		})
	}
}
