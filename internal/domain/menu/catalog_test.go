package menu

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRepo struct {
	mu      sync.Mutex
	items   []Item
	saves   int
	loadErr error
	saveErr error
}

func (m *mockRepo) Load(_ context.Context) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items, m.loadErr
}

func (m *mockRepo) Save(_ context.Context, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items = append([]Item(nil), items...)
	return nil
}

type sourceFunc func(ctx context.Context) ([]Item, error)

func (f sourceFunc) Meals(ctx context.Context) ([]Item, error) { return f(ctx) }

// --- Helpers ---

func item(id, category string, price int64) Item {
	return Item{
		ID:          id,
		Name:        "Item " + id,
		Price:       decimal.NewFromInt(price),
		Category:    category,
		IsVeg:       true,
		IsAvailable: true,
	}
}

// --- Tests ---

func TestCatalog_LoadOfflineSeedsDefaults(t *testing.T) {
	repo := &mockRepo{}
	c := NewCatalog(repo, nil)

	require.NoError(t, c.Load(context.Background()))

	items := c.Items()
	require.Len(t, items, 25)
	assert.Equal(t, "Normal Thali", items[0].Name)
	assert.True(t, items[0].Popular)
	assert.True(t, decimal.NewFromInt(120).Equal(items[0].Price))
	assert.Len(t, repo.items, 25, "seed persisted")
}

func TestCatalog_LoadKeepsCache(t *testing.T) {
	repo := &mockRepo{items: []Item{item("x", "Snacks", 10)}}
	c := NewCatalog(repo, nil)

	require.NoError(t, c.Load(context.Background()))
	assert.Len(t, c.Items(), 1)
	assert.Zero(t, repo.saves)
}

func TestCatalog_LoadError(t *testing.T) {
	c := NewCatalog(&mockRepo{loadErr: errors.New("disk gone")}, nil)
	require.Error(t, c.Load(context.Background()))
}

func TestCatalog_RefreshOnline(t *testing.T) {
	repo := &mockRepo{}
	c := NewCatalog(repo, sourceFunc(func(context.Context) ([]Item, error) {
		return []Item{item("1", "Lunch", 100)}, nil
	}))

	items := c.Refresh(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, items, repo.items)
}

func TestCatalog_RefreshFailureEmptiesCatalog(t *testing.T) {
	repo := &mockRepo{}
	fail := false
	c := NewCatalog(repo, sourceFunc(func(context.Context) ([]Item, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return []Item{item("1", "Lunch", 100)}, nil
	}))
	c.Refresh(context.Background())
	require.Len(t, c.Items(), 1)

	fail = true
	items := c.Refresh(context.Background())
	assert.Empty(t, items)
	assert.Empty(t, c.Items())
	assert.Equal(t, 2, repo.saves)
	assert.Empty(t, repo.items, "empty catalog persisted")
}

func TestCatalog_HydrateSkipsWhenLoaded(t *testing.T) {
	calls := 0
	c := NewCatalog(&mockRepo{}, sourceFunc(func(context.Context) ([]Item, error) {
		calls++
		return []Item{item("1", "Lunch", 100)}, nil
	}))

	c.Hydrate(context.Background())
	c.Hydrate(context.Background())
	assert.Equal(t, 1, calls)

	c.Refresh(context.Background())
	assert.Equal(t, 2, calls)
}

func TestCatalog_StaleRefreshDiscarded(t *testing.T) {
	first := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	c := NewCatalog(&mockRepo{}, sourceFunc(func(context.Context) ([]Item, error) {
		slow := false
		once.Do(func() { slow = true })
		if slow {
			close(first)
			<-release
			return []Item{item("old", "Lunch", 1)}, nil
		}
		return []Item{item("new", "Lunch", 2)}, nil
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Refresh(context.Background())
	}()

	<-first
	c.Refresh(context.Background())
	close(release)
	<-done

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].ID)
}

func TestCatalog_PersistFailureKeepsMemory(t *testing.T) {
	c := NewCatalog(&mockRepo{saveErr: errors.New("quota exceeded")}, nil)
	c.Add(context.Background(), item("1", "Rice", 50))
	assert.Len(t, c.Items(), 1)
}

func TestCatalog_AdminEdits(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	c := NewCatalog(repo, nil)

	c.Add(ctx, item("1", "Rice", 50))
	c.Add(ctx, item("2", "Rice", 60))

	upd := item("2", "Snacks", 70)
	require.NoError(t, c.Update(ctx, upd))
	got, err := c.Get("2")
	require.NoError(t, err)
	assert.Equal(t, "Snacks", got.Category)

	require.ErrorIs(t, c.Update(ctx, item("9", "Rice", 1)), ErrNotFound)

	c.Delete(ctx, "1")
	_, err = c.Get("1")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, repo.items, 1)
}

func TestFilter_Apply(t *testing.T) {
	popular := item("p", "Thali", 120)
	popular.Popular = true
	popular.Name = "Normal Thali"
	nonVeg := item("n", "Main Course", 200)
	nonVeg.IsVeg = false
	nonVeg.Description = "Chicken curry"
	hidden := item("h", "Thali", 10)
	hidden.IsAvailable = false
	items := []Item{popular, nonVeg, hidden, item("r", "Rice", 80)}

	ids := func(items []Item) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{Category: CategoryAll}, []string{"p", "n", "r"}},
		{"empty category", Filter{}, []string{"p", "n", "r"}},
		{"popular", Filter{Category: CategoryPopular}, []string{"p"}},
		{"veg", Filter{Category: CategoryVeg}, []string{"p", "r"}},
		{"category", Filter{Category: "Thali"}, []string{"p"}},
		{"query name", Filter{Query: "THALI"}, []string{"p"}},
		{"query description", Filter{Query: "chicken"}, []string{"n"}},
		{"query category", Filter{Query: "rice"}, []string{"r"}},
		{"category and query", Filter{Category: CategoryVeg, Query: "curry"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(items)))
		})
	}
}

func TestCategories(t *testing.T) {
	c := NewCatalog(&mockRepo{}, nil)
	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, []string{
		"all", "Thali", "Paratha", "Main Course", "Rice", "Breakfast", "Snacks", "Dessert", "Beverage",
	}, c.Categories())
	assert.Equal(t, 3, c.CategoryCount("Thali"))
	assert.Equal(t, 25, c.CategoryCount(CategoryAll))
	assert.Equal(t, 3, c.CategoryCount(CategoryPopular))
}
