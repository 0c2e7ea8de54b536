package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAvailableExcludesUnavailable(t *testing.T) {
	db := setupServicesTestDB(t)
	seedMenu(t, db)
	catalog := NewCatalogService(db)

	products, err := catalog.ListAvailable()
	require.NoError(t, err)
	require.Len(t, products, 4)
	for _, p := range products {
		assert.True(t, p.Available)
		assert.NotEqual(t, "Tortilla Española", p.Name)
	}
}

func TestResolveCaseInsensitiveSubstring(t *testing.T) {
	db := setupServicesTestDB(t)
	seedMenu(t, db)
	catalog := NewCatalogService(db)

	tests := []struct {
		name     string
		input    string
		expected string // "" means no match
	}{
		{"exact name", "Arroz con Pollo", "Arroz con Pollo"},
		{"lowercase", "arroz con pollo", "Arroz con Pollo"},
		{"substring", "paella", "Paella Tradicional"},
		{"mixed case substring", "RaBaS", "Rabas"},
		{"surrounding spaces", "  tortilla de papa  ", "Tortilla de Papa"},
		{"not on menu", "milanesa napolitana", ""},
		{"unavailable item", "tortilla española", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := catalog.Resolve(tt.input)
			require.NoError(t, err)
			if tt.expected == "" {
				assert.Nil(t, match)
				return
			}
			require.NotNil(t, match)
			assert.Equal(t, tt.expected, match.Name)
		})
	}
}

func TestResolveFirstMatchInCatalogOrderWins(t *testing.T) {
	db := setupServicesTestDB(t)
	seedMenu(t, db)
	catalog := NewCatalogService(db)

	// "tortilla" is a substring of two products; catalog order is
	// (category, name) so "Tortilla de Papa" comes first among available ones
	match, err := catalog.Resolve("tortilla")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "Tortilla de Papa", match.Name)
}
