package cart

import (
	"sync"
	"testing"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(id, material string, price int64) domain.CartCandidate {
	return domain.CartCandidate{
		ID:        id,
		Name:      "Custom " + id,
		Material:  material,
		Color:     "#8B4513",
		UnitPrice: decimal.NewFromInt(price),
	}
}

func TestAddItem_MergesOnIDAndMaterial(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("modern-chair", "Walnut", 850))
	s.AddItem(candidate("wooden-clock", "Birch", 400))
	s.AddItem(candidate("modern-chair", "Walnut", 850))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "modern-chair", items[0].ID, "insertion order preserved")
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 3, s.Count())
	assert.True(t, decimal.NewFromInt(2100).Equal(s.Total()))
}

func TestAddItem_MergeDoesNotRefreshNameOrPrice(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("modern-chair", "Walnut", 850))

	updated := candidate("modern-chair", "Walnut", 999)
	updated.Name = "Renamed"
	s.AddItem(updated)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Custom modern-chair", items[0].Name)
	assert.True(t, decimal.NewFromInt(850).Equal(items[0].UnitPrice))
}

func TestRemoveItem(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("a", "Walnut", 100))
	s.AddItem(candidate("b", "Ebony", 200))
	s.AddItem(candidate("a", "Ebony", 300))

	assert.True(t, s.RemoveItem(domain.LineKey{ID: "a", Material: "Ebony"}))
	assert.False(t, s.RemoveItem(domain.LineKey{ID: "a", Material: "Birch"}))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, domain.LineKey{ID: "a", Material: "Walnut"}, items[0].Key())
	assert.Equal(t, domain.LineKey{ID: "b", Material: "Ebony"}, items[1].Key())
}

func TestRemoveAt_OutOfRangeIsNoop(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("a", "Walnut", 100))

	assert.False(t, s.RemoveAt(-1))
	assert.False(t, s.RemoveAt(1))
	assert.Len(t, s.Items(), 1)

	assert.True(t, s.RemoveAt(0))
	assert.Empty(t, s.Items())
}

func TestClear_KeepsDrawerState(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("a", "Walnut", 100))
	s.Open()

	s.Clear()

	assert.Empty(t, s.Items())
	assert.True(t, s.Total().IsZero())
	assert.Equal(t, 0, s.Count())
	assert.True(t, s.IsOpen())
}

func TestDrawer(t *testing.T) {
	s := NewStore()
	assert.False(t, s.IsOpen())

	s.ToggleOpen()
	assert.True(t, s.IsOpen())
	s.ToggleOpen()
	assert.False(t, s.IsOpen())

	s.Open()
	s.Open()
	assert.True(t, s.IsOpen())
	s.Close()
	assert.False(t, s.IsOpen())
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("a", "Walnut", 100))

	items := s.Items()
	items[0].Quantity = 42

	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestSnapshot(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("a", "Walnut", 100))
	s.AddItem(candidate("a", "Walnut", 100))
	s.ToggleOpen()

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Count)
	assert.True(t, decimal.NewFromInt(200).Equal(snap.Total))
	assert.True(t, snap.IsOpen)
	assert.Equal(t, domain.CurrencyGHS, snap.Currency)
	assert.False(t, snap.CapturedAt.IsZero())

	s.Clear()
	assert.Len(t, snap.Items, 1, "snapshot must not alias cart storage")
}

func TestSubscribe_NotifiedPerMutation(t *testing.T) {
	s := NewStore()

	var counts []int
	unsubscribe := s.Subscribe(func(snap domain.CartSnapshot) {
		counts = append(counts, snap.Count)
	})

	s.AddItem(candidate("a", "Walnut", 100))
	s.AddItem(candidate("a", "Walnut", 100))
	s.RemoveItem(domain.LineKey{ID: "missing"})
	s.Clear()

	assert.Equal(t, []int{1, 2, 0}, counts)

	unsubscribe()
	unsubscribe()
	s.AddItem(candidate("a", "Walnut", 100))
	assert.Len(t, counts, 3)
}

func TestSubscribe_ListenerMayReadStore(t *testing.T) {
	s := NewStore()

	var total decimal.Decimal
	s.Subscribe(func(domain.CartSnapshot) {
		total = s.Total()
	})

	s.AddItem(candidate("a", "Walnut", 150))
	assert.True(t, decimal.NewFromInt(150).Equal(total))
}

func TestConcurrentAdds(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(candidate("a", "Walnut", 10))
		}()
	}
	wg.Wait()

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 50, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(500).Equal(s.Total()))
}

func TestSubscribe_ConcurrentMutationsDeliveredInOrder(t *testing.T) {
	s := NewStore()

	var (
		mu     sync.Mutex
		counts []int
	)
	s.Subscribe(func(snap domain.CartSnapshot) {
		mu.Lock()
		counts = append(counts, snap.Count)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(candidate("a", "Walnut", 10))
		}()
	}
	wg.Wait()

	require.Len(t, counts, 100)
	for i, c := range counts {
		assert.Equal(t, i+1, c, "delivery %d", i)
	}
}
