// Package catalog is the read-only product lookup table of the showroom.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultModelID is shown when the referrer supplies no usable model.
const DefaultModelID = "puffy-chair"

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Tag         string          `json:"tag"`
	Description string          `json:"description"`
}

type Catalog struct {
	products []Product
	byID     map[string]Product
}

func New(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]Product, len(products)),
	}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.products = append(c.products, p)
		c.byID[p.ID] = p
	}
	return c
}

func (c *Catalog) Lookup(id string) (Product, bool) {
	p, ok := c.byID[strings.TrimSpace(id)]
	return p, ok
}

// List returns the products in catalog order.
func (c *Catalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Default is the built-in collection.
func Default() *Catalog {
	return New([]Product{
		{ID: "office-chair", Name: "Ergonomic Office Chair", Price: decimal.NewFromInt(1200), Tag: "Seating", Description: "Premium comfort for long work sessions."},
		{ID: "velvet-chair", Name: "Plush Velvet Chair", Price: decimal.NewFromInt(1500), Tag: "Seating", Description: "Luxurious velvet upholstery with gold accents."},
		{ID: "puffy-chair", Name: "Plush Puffy Chair", Price: decimal.NewFromInt(950), Tag: "Seating", Description: "Cloud-like comfort in a modern silhouette."},
		{ID: "tree-bookshelf", Name: "Illuminated Tree Bookshelf", Price: decimal.NewFromInt(1800), Tag: "Storage", Description: "Organic branching design with integrated LED lighting."},
		{ID: "wooden-furniture", Name: "Classic Wooden Furniture", Price: decimal.NewFromInt(2100), Tag: "Sets", Description: "Matching set of handcrafted wooden pieces."},
		{ID: "handcrafted-bowl", Name: "Handcrafted Wooden Bowl", Price: decimal.NewFromInt(150), Tag: "Decor", Description: "Artistic centerpiece carved from single-piece oak."},
		{ID: "skameka", Name: "Skameka Stool", Price: decimal.NewFromInt(300), Tag: "Seating", Description: "Minimalist geometric stool with a natural finish."},
		{ID: "medieval-table", Name: "Medieval Banquet Table", Price: decimal.NewFromInt(3200), Tag: "Tables", Description: "Grand dining table with rustic ironwork."},
		{ID: "sculpted-boat", Name: "Miniature Sculpted Boat", Price: decimal.NewFromInt(600), Tag: "Art", Description: "Decorative nautical sculpture for shelves or mantels."},
		{ID: "wooden-clock", Name: "Artisan Wooden Clock", Price: decimal.NewFromInt(400), Tag: "Decor", Description: "Silent movement clock with live-edge wood face."},
		{ID: "rocking-chair", Name: "Vintage Rocking Chair", Price: decimal.NewFromInt(1100), Tag: "Seating", Description: "Classic comfort with a smooth, rhythmic glide."},
		{ID: "sofa-chair", Name: "Cozy Sofa Chair", Price: decimal.NewFromInt(1400), Tag: "Seating", Description: "Compact sofa-style armchair for relaxed lounging."},
		{ID: "modern-chair", Name: "Sleek Modern Chair", Price: decimal.NewFromInt(850), Tag: "Seating", Description: "Architectural lines meeting ergonomic support."},
		{ID: "sleek-armchair", Name: "Sleek Armchair", Price: decimal.NewFromInt(1300), Tag: "Seating", Description: "Contoured design for the modern living space."},
		{ID: "rounded-chair", Name: "Rounded Sofa Chair", Price: decimal.NewFromInt(1600), Tag: "Seating", Description: "Circular profile with soft, wrap-around cushioning."},
		{ID: "wooden-chair", Name: "Standard Wooden Chair", Price: decimal.NewFromInt(450), Tag: "Seating", Description: "Timeless wooden chair built for durability."},
	})
}
