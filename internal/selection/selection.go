// Package selection tracks the model and material a shopper is configuring.
package selection

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jeffloic/artisan-showroom/internal/catalog"
	"github.com/jeffloic/artisan-showroom/internal/domain"
)

var (
	ErrInvalidSelection = errors.New("selection has no valid price")
	ErrUnknownMaterial  = errors.New("unknown material")
)

type Material struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var palette = []Material{
	{Name: "Walnut", Color: "#8B4513"},
	{Name: "Ebony", Color: "#1C1C1C"},
	{Name: "Birch", Color: "#F5F0E8"},
}

// Palette returns the selectable materials in display order.
func Palette() []Material {
	out := make([]Material, len(palette))
	copy(out, palette)
	return out
}

// Cart is the part of the cart store the controller writes to.
type Cart interface {
	AddItem(candidate domain.CartCandidate)
	Open()
}

type Catalog interface {
	Lookup(id string) (catalog.Product, bool)
}

// Current is what the renderer needs to draw the configured item.
type Current struct {
	ModelID       string `json:"model_id"`
	Material      string `json:"material"`
	Color         string `json:"color"`
	MaterialIndex int    `json:"material_index"`
}

type Controller struct {
	mu       sync.Mutex
	cart     Cart
	catalog  Catalog
	modelID  string
	material int
}

// New starts a selection on modelID, or on the default model when modelID is
// empty or not in the catalog.
func New(cart Cart, cat Catalog, modelID string) *Controller {
	c := &Controller{cart: cart, catalog: cat}
	c.modelID = c.resolveModel(modelID)
	return c
}

func (c *Controller) resolveModel(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return catalog.DefaultModelID
	}
	if _, ok := c.catalog.Lookup(id); !ok {
		return catalog.DefaultModelID
	}
	return id
}

// SelectModel switches the model and keeps the chosen material.
func (c *Controller) SelectModel(id string) Current {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modelID = c.resolveModel(id)
	return c.currentLocked()
}

func (c *Controller) SelectMaterial(index int) (Current, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(palette) {
		return c.currentLocked(), fmt.Errorf("%w: index %d", ErrUnknownMaterial, index)
	}
	c.material = index
	return c.currentLocked(), nil
}

// SelectMaterialByName is SelectMaterial keyed by the material name, case-insensitively.
func (c *Controller) SelectMaterialByName(name string) (Current, error) {
	for i, m := range palette {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return c.SelectMaterial(i)
		}
	}
	return c.Current(), fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
}

func (c *Controller) Current() Current {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

func (c *Controller) currentLocked() Current {
	m := palette[c.material]
	return Current{
		ModelID:       c.modelID,
		Material:      m.Name,
		Color:         m.Color,
		MaterialIndex: c.material,
	}
}

// AddCurrentSelectionToCart puts the configured item in the cart and opens the
// drawer. The cart is left untouched if the model has no positive price.
func (c *Controller) AddCurrentSelectionToCart() (domain.CartCandidate, error) {
	c.mu.Lock()
	cur := c.currentLocked()
	c.mu.Unlock()

	product, ok := c.catalog.Lookup(cur.ModelID)
	if !ok || !product.Price.IsPositive() {
		return domain.CartCandidate{}, fmt.Errorf("%w: %s", ErrInvalidSelection, cur.ModelID)
	}

	candidate := domain.CartCandidate{
		ID:        cur.ModelID,
		Name:      DisplayName(cur.ModelID),
		Material:  cur.Material,
		Color:     cur.Color,
		UnitPrice: product.Price,
	}
	c.cart.AddItem(candidate)
	c.cart.Open()
	return candidate, nil
}

// DisplayName is "Custom " followed by the model id with dashes as spaces.
func DisplayName(modelID string) string {
	return "Custom " + strings.ReplaceAll(modelID, "-", " ")
}
