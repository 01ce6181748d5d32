package selection

import (
	"github.com/jeffloic/artisan-showroom/internal/catalog"
	"github.com/jeffloic/artisan-showroom/internal/domain"
)

type mockCart struct {
	added  []domain.CartCandidate
	opened int
}

func (m *mockCart) AddItem(candidate domain.CartCandidate) {
	m.added = append(m.added, candidate)
}

func (m *mockCart) Open() {
	m.opened++
}

type mockCatalog struct {
	products map[string]catalog.Product
}

func (m *mockCatalog) Lookup(id string) (catalog.Product, bool) {
	p, ok := m.products[id]
	return p, ok
}
