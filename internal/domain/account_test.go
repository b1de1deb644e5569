package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierForms(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		expected   []string
	}{
		{
			name:       "bare identifier",
			identifier: "123",
			expected:   []string{"123", "act_123"},
		},
		{
			name:       "prefixed identifier",
			identifier: "act_123",
			expected:   []string{"123", "act_123"},
		},
		{
			name:       "surrounding whitespace",
			identifier: "  act_123 ",
			expected:   []string{"123", "act_123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IdentifierForms(tt.identifier))
		})
	}
}

func TestIdentifierFormsSymmetry(t *testing.T) {
	// "123" and "act_123" must resolve through the same lookup forms.
	assert.Equal(t, IdentifierForms("123"), IdentifierForms("act_123"))
}

func TestPrefixAccountIdentifier(t *testing.T) {
	assert.Equal(t, "act_123", PrefixAccountIdentifier("123"))
	assert.Equal(t, "act_123", PrefixAccountIdentifier("act_123"))
}
