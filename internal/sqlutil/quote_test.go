package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"lds_data", `"lds_data"`},
		{"select", `"select"`},         // reserved word
		{"first name", `"first name"`}, // space in name
		{`user"data`, `"user""data"`},  // quote in name
		{"TimeSheet.data", `"TimeSheet.data"`},
		{"", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuoteIdentifier(tt.input))
		})
	}
}

func TestQuoteString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "'hello'"},
		{"it's", "'it''s'"},
		{"a'b'c", "'a''b''c'"},
		{"", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuoteString(tt.input))
		})
	}
}

func TestUnquoteString_RoundTrip(t *testing.T) {
	for _, s := range []string{"hello", "it's", "''", "", "-4 days"} {
		got, err := UnquoteString(QuoteString(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestUnquoteString_Rejects(t *testing.T) {
	for _, s := range []string{"hello", "'", "'a'b'", `"a"`} {
		_, err := UnquoteString(s)
		assert.Error(t, err, s)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "UiApi::RecordRepresentation:", EscapeLike("UiApi::RecordRepresentation:"))
	assert.Equal(t, `a\_b\%c\\d`, EscapeLike(`a_b%c\d`))
}
