package menu

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winter-feast/internal/logger"
	"winter-feast/internal/models"
)

type fakeMenuRepo struct {
	nextID int
	items  map[int]*models.MenuItem
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{items: make(map[int]*models.MenuItem)}
}

func (r *fakeMenuRepo) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	for _, existing := range r.items {
		if existing.Name == item.Name {
			return models.ErrDuplicateMenuItem
		}
	}
	r.nextID++
	item.ID = r.nextID
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeMenuRepo) ListActive(_ context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	for id := 1; id <= r.nextID; id++ {
		if item, ok := r.items[id]; ok && item.Active {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *fakeMenuRepo) ListAll(_ context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	for id := 1; id <= r.nextID; id++ {
		if item, ok := r.items[id]; ok {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *fakeMenuRepo) ListHighlights(ctx context.Context, limit int) ([]models.MenuItem, error) {
	items, _ := r.ListActive(ctx)
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if items[j].Price.LessThan(items[i].Price) {
				items[i], items[j] = items[j], items[i]
			}
		}
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *fakeMenuRepo) GetActiveByName(_ context.Context, name string) (*models.MenuItem, error) {
	for _, item := range r.items {
		if item.Name == name && item.Active {
			copied := *item
			return &copied, nil
		}
	}
	return nil, models.ErrMenuItemNotFound
}

func (r *fakeMenuRepo) GetByID(_ context.Context, id int) (*models.MenuItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, models.ErrMenuItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeMenuRepo) GetPricesByNames(_ context.Context, names []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)
	for _, item := range r.items {
		for _, name := range names {
			if item.Name == name {
				prices[name] = item.Price
			}
		}
	}
	return prices, nil
}

func (r *fakeMenuRepo) ToggleActive(_ context.Context, id int) error {
	item, ok := r.items[id]
	if !ok {
		return models.ErrMenuItemNotFound
	}
	item.Active = !item.Active
	return nil
}

func (r *fakeMenuRepo) Delete(_ context.Context, id int) error {
	delete(r.items, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeMenuRepo, string) {
	t.Helper()
	repo := newFakeMenuRepo()
	dir := t.TempDir()
	return NewService(repo, dir, logger.New("test")), repo, dir
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"two digits kept", "89.00", "89.00", false},
		{"rounded half up", "12.345", "12.35", false},
		{"integer input", "74", "74.00", false},
		{"whitespace trimmed", " 10.5 ", "10.50", false},
		{"negative rejected", "-1", "", true},
		{"non-numeric rejected", "galleons", "", true},
		{"empty rejected", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := NormalizePrice(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, price.StringFixed(2))
		})
	}
}

func TestCreateItem_SavesImageWithRandomPrefix(t *testing.T) {
	svc, repo, dir := newTestService(t)

	item, err := svc.CreateItem(context.Background(), CreateItemRequest{
		Name:        "Mandrake Stew",
		Weight:      "300",
		Ingredients: "mandrake, broth",
		Description: "Loud but tasty.",
		PriceRaw:    "120.50",
	}, strings.NewReader("png-bytes"), "stew.png")
	require.NoError(t, err)

	require.NotNil(t, item.FileName)
	assert.True(t, strings.HasSuffix(*item.FileName, "_stew.png"))
	assert.NotEqual(t, "stew.png", *item.FileName)

	data, err := os.ReadFile(filepath.Join(dir, *item.FileName))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Len(t, repo.items, 1)
}

func TestCreateItem_DuplicateLeavesNoFile(t *testing.T) {
	svc, _, dir := newTestService(t)
	ctx := context.Background()

	req := CreateItemRequest{
		Name: "Mandrake Stew", Weight: "300",
		Ingredients: "mandrake", Description: "x", PriceRaw: "10",
	}
	_, err := svc.CreateItem(ctx, req, strings.NewReader("a"), "stew.png")
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, req, strings.NewReader("b"), "stew.png")
	assert.ErrorIs(t, err, models.ErrDuplicateMenuItem)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "duplicate upload must not leave an orphan file")
}

func TestCreateItem_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateItem(context.Background(), CreateItemRequest{
		Name: "Stew", Weight: "300", Ingredients: "", Description: "x", PriceRaw: "10",
	}, strings.NewReader("a"), "stew.png")
	assert.ErrorIs(t, err, models.ErrMissingFields)
}

func TestDeleteItem_RemovesImage(t *testing.T) {
	svc, repo, dir := newTestService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, CreateItemRequest{
		Name: "Stew", Weight: "300", Ingredients: "m", Description: "x", PriceRaw: "10",
	}, strings.NewReader("a"), "stew.png")
	require.NoError(t, err)

	// Image already gone on disk: deletion still succeeds.
	require.NoError(t, os.Remove(filepath.Join(dir, *item.FileName)))
	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	assert.Empty(t, repo.items)
}

func TestToggleActive_HidesFromListing(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)

	require.NoError(t, svc.ToggleActive(ctx, active[0].ID))

	active, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3, "deactivated item stays in the admin view")
	assert.Len(t, repo.items, 3)
}

func TestSeed_Idempotent(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	require.NoError(t, svc.Seed(ctx))

	assert.Len(t, repo.items, 3)

	highlights, err := svc.Highlights(ctx)
	require.NoError(t, err)
	require.Len(t, highlights, 3)
	assert.Equal(t, "Snowy Owl Pie", highlights[0].Name, "cheapest first")
}
