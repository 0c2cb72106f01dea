package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText_NFC(t *testing.T) {
	// "é" as e + combining acute vs precomposed.
	decomposed := "  Cafe\u0301 "
	assert.Equal(t, "Caf\u00e9", NormalizeText(decomposed))
}

func TestMatchesQuery(t *testing.T) {
	assert.True(t, MatchesQuery("RICE", "Miniket Rice", "মিনিকেট চাল"))
	assert.True(t, MatchesQuery("চাল", "Miniket Rice", "মিনিকেট চাল"))
	assert.True(t, MatchesQuery("", "anything"))
	assert.False(t, MatchesQuery("oil", "Miniket Rice", "মিনিকেট চাল"))
}
