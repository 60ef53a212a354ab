package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStyles(t *testing.T) {
	assert.Len(t, DefaultStyles, 9)

	seen := make(map[string]bool)
	for _, s := range DefaultStyles {
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Description)
		assert.False(t, seen[s.ID], "duplicate style id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestFindStyle(t *testing.T) {
	s, ok := FindStyle(" Anime ")
	assert.True(t, ok)
	assert.Equal(t, "Japanese anime-inspired style", s.Description)

	_, ok = FindStyle("vaporwave")
	assert.False(t, ok)
}
