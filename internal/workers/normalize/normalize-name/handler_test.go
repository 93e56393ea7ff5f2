// internal/workers/normalize/normalize-name/handler_test.go
package normalizename

import (
	"context"
	"testing"

	"github.com/cinematicsodium/awards/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Core Functionality Tests
// ==========================

func TestNormalize_Resolved(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"first last", "john smith", "Smith, John"},
		{"title dropped", "Dr. Jane Smith", "Smith, Jane"},
		{"title without period", "Mrs Jane Smith", "Smith, Jane"},
		{"already inverted", "Smith, Jane", "Smith, Jane"},
		{"inverted without space", "Smith,Jane", "Smith, Jane"},
		{"middle initial dropped", "John Q. Public", "Public, John"},
		{"bare initial dropped", "John Q Public", "Public, John"},
		{"middle name kept after initial", "Mary Ann Q. Smith", "Smith, Mary Ann"},
		{"quoted nickname", `Robert "Bob" Jones`, "Jones, Robert"},
		{"curly quoted nickname", "Robert “Bob” Jones", "Jones, Robert"},
		{"parenthetical nickname", "Robert (Bob) Jones", "Jones, Robert"},
		{"multi-word quoted nickname", `Robert "Bobby Joe" Smith`, "Smith, Robert"},
		{"multi-word parenthetical nickname", "Robert (Big Bob) Smith", "Smith, Robert"},
		{"multi-word single-quoted nickname", "Robert 'Big Bob' Smith", "Smith, Robert"},
		{"nickname after inverted name", `Smith, Robert "Bobby Joe"`, "Smith, Robert"},
		{"apostrophes in both names", "D'Andre O'Brien", "O'Brien, D'Andre"},
		{"upper case with apostrophe", "JANE O'BRIEN", "O'Brien, Jane"},
		{"hyphenated surname", "mary smith-jones", "Smith-Jones, Mary"},
		{"surname particle", "Maria de Souza", "de Souza, Maria"},
		{"mixed case kept", "Mr. John McDonald", "McDonald, John"},
		{"trailing degree", "Jane Smith, Ph.D.", "Smith, Jane"},
		{"inverted three parts", "Smith, Mary Ann", "Smith, Mary Ann"},
		{"accents folded", "José Núñez", "Nunez, Jose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.raw)
			require.Equal(t, KindResolved, res.Kind, "reason: %s", res.Reason)
			assert.Equal(t, tt.expected, res.Name)
			assert.Equal(t, tt.raw, res.Original)
		})
	}
}

func TestNormalize_Ambiguous(t *testing.T) {
	res := Normalize("Mary Ann Smith")
	assert.Equal(t, KindAmbiguous, res.Kind)
	assert.Empty(t, res.Name)
	assert.Equal(t, "Mary Ann Smith", res.Original)
	assert.False(t, res.Resolved())
}

func TestNormalize_Unresolved(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"single token", "Cher"},
		{"title only", "Dr."},
		{"too many parts", "Juan Carlos de la Cruz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.raw)
			assert.Equal(t, KindUnresolved, res.Kind)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, raw := range []string{"john smith", "Dr. Jane Smith", "Mary Ann Q. Smith", "JANE O'BRIEN"} {
		first := Normalize(raw)
		require.True(t, first.Resolved())
		second := Normalize(first.Name)
		require.True(t, second.Resolved())
		assert.Equal(t, first.Name, second.Name)
	}
}

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(logger.NewNoOpLogger())
	out, err := h.Execute(context.Background(), &Input{Raw: "Dr. Jane Smith"})
	require.NoError(t, err)
	assert.Equal(t, "Smith, Jane", out.Result.Name)
}
