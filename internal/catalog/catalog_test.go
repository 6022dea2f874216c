package catalog

import (
	"testing"

	"github.com/alextreichler/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	products := c.All()
	require.Len(t, products, 10)

	seen := map[int]bool{}
	for _, p := range products {
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
		assert.False(t, p.Price.IsNegative())
		assert.GreaterOrEqual(t, p.Rating, 0.0)
		assert.LessOrEqual(t, p.Rating, 5.0)
	}
}

func TestFind(t *testing.T) {
	c := Default()

	p, ok := c.Find(1)
	require.True(t, ok)
	assert.Equal(t, "Wireless Headphones", p.Name)
	assert.Equal(t, "89.99", p.Price.String())

	_, ok = c.Find(999)
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	c := Default()
	products := c.All()
	products[0].Name = "changed"

	p, _ := c.Find(products[0].ID)
	assert.Equal(t, "Wireless Headphones", p.Name)
}

func TestSearch(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		query    string
		category string
		wantIDs  []int
	}{
		{"everything", "", All, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"empty category means all", "", "", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"category only", "", "Sports", []int{6, 10}},
		{"case insensitive query", "WATCH", All, []int{2}},
		{"query and category", "e", "Home", []int{5, 9}},
		{"no match", "bicycle", All, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []int{}
			for _, p := range c.Search(tt.query, tt.category) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.wantIDs, got)
		})
	}
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"All", "Electronics", "Fashion", "Home", "Sports"}, Categories())
	assert.Len(t, models.Categories, 4)
}
