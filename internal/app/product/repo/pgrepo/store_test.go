package pgrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPatterns(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"contains lowercases", containsPattern("Phones"), "%phones%"},
		{"contains escapes wildcards", containsPattern("50%_off"), `%50\%\_off%`},
		{"contains escapes backslash", containsPattern(`a\b`), `%a\\b%`},
		{"prefix", prefixPattern("Gal"), "gal%"},
		{"prefix escapes", prefixPattern("100%"), `100\%%`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}
