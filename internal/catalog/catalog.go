package catalog

import (
	"strings"

	"github.com/alextreichler/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// All is the category filter value that matches every product.
const All = "All"

// Catalog is a read-only product list loaded once at startup.
type Catalog struct {
	products []models.Product
	byID     map[int]int
}

func New(products []models.Product) *Catalog {
	c := &Catalog{
		products: make([]models.Product, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

// Default returns the storefront's built-in catalog.
func Default() *Catalog {
	return New(defaultProducts)
}

func (c *Catalog) All() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Find(id int) (models.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// Search filters by a case-insensitive name substring and a category.
// An empty query matches everything, as does category "" or All.
func (c *Catalog) Search(query, category string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Product{}
	for _, p := range c.products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if category != "" && category != All && string(p.Category) != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns the filter menu, All first.
func Categories() []string {
	out := []string{All}
	for _, c := range models.Categories {
		out = append(out, string(c))
	}
	return out
}

var defaultProducts = []models.Product{
	{ID: 1, Name: "Wireless Headphones", Price: price("89.99"), Category: models.CategoryElectronics, Image: "🎧", Rating: 4.5, Description: "Premium noise-cancelling headphones with 30-hour battery life."},
	{ID: 2, Name: "Smart Watch", Price: price("199.99"), Category: models.CategoryElectronics, Image: "⌚", Rating: 4.8, Description: "Fitness tracking, heart rate monitor, and smartphone notifications."},
	{ID: 3, Name: "Running Shoes", Price: price("79.99"), Category: models.CategoryFashion, Image: "👟", Rating: 4.3, Description: "Lightweight and breathable running shoes for optimal performance."},
	{ID: 4, Name: "Leather Wallet", Price: price("49.99"), Category: models.CategoryFashion, Image: "👛", Rating: 4.6, Description: "Genuine leather bifold wallet with RFID protection."},
	{ID: 5, Name: "Coffee Maker", Price: price("129.99"), Category: models.CategoryHome, Image: "☕", Rating: 4.7, Description: "Programmable coffee maker with thermal carafe."},
	{ID: 6, Name: "Yoga Mat", Price: price("34.99"), Category: models.CategorySports, Image: "🧘", Rating: 4.4, Description: "Non-slip exercise mat with extra cushioning."},
	{ID: 7, Name: "Bluetooth Speaker", Price: price("59.99"), Category: models.CategoryElectronics, Image: "🔊", Rating: 4.2, Description: "Portable waterproof speaker with 12-hour battery."},
	{ID: 8, Name: "Backpack", Price: price("69.99"), Category: models.CategoryFashion, Image: "🎒", Rating: 4.5, Description: "Durable travel backpack with laptop compartment."},
	{ID: 9, Name: "Desk Lamp", Price: price("44.99"), Category: models.CategoryHome, Image: "💡", Rating: 4.1, Description: "LED desk lamp with adjustable brightness."},
	{ID: 10, Name: "Tennis Racket", Price: price("149.99"), Category: models.CategorySports, Image: "🎾", Rating: 4.9, Description: "Professional-grade tennis racket."},
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
