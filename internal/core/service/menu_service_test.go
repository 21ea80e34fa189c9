package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

func newMenuFixture() (*MenuService, *mockDB, *mockCacheRepo) {
	db := newMockDB()
	db.menu = seedMenu()
	cache := newMockCacheRepo()
	return NewMenuService(db, cache, 5*time.Minute, quietLogger()), db, cache
}

func names(items []domain.MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestMenuList_All(t *testing.T) {
	svc, _, _ := newMenuFixture()

	items, err := svc.List(context.Background(), MenuFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 5)

	items, err = svc.List(context.Background(), MenuFilter{Category: CategoryAll})
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestMenuList_Filters(t *testing.T) {
	svc, _, _ := newMenuFixture()
	ctx := context.Background()

	snacks, err := svc.List(ctx, MenuFilter{Category: "Snacks"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Crispy Onion Rings", "Loaded Fries"}, names(snacks))

	popular, err := svc.List(ctx, MenuFilter{PopularOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Classic Aura Burger", "Loaded Fries"}, names(popular))

	search, err := svc.List(ctx, MenuFilter{Search: "  FRIES "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Loaded Fries"}, names(search))

	none, err := svc.List(ctx, MenuFilter{Category: "Drinks", Search: "burger"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMenuList_UnknownCategory(t *testing.T) {
	svc, _, _ := newMenuFixture()

	_, err := svc.List(context.Background(), MenuFilter{Category: "Desserts"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Field("category"))
}

func TestMenuList_CacheAside(t *testing.T) {
	svc, db, cache := newMenuFixture()
	ctx := context.Background()

	_, err := svc.List(ctx, MenuFilter{})
	require.NoError(t, err)
	_, err = svc.List(ctx, MenuFilter{Category: "Meals"})
	require.NoError(t, err)

	assert.Equal(t, 1, db.menuLoads, "second read should come from the cache")
	assert.Equal(t, 1, cache.menuWrites)
}

func TestMenuList_SingleflightCollapsesMisses(t *testing.T) {
	svc, db, _ := newMenuFixture()
	db.loadDelay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := svc.List(context.Background(), MenuFilter{})
			assert.NoError(t, err)
			assert.Len(t, items, 5)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, db.menuLoads)
}

func TestMenuList_CacheDownFallsBackToDB(t *testing.T) {
	svc, db, cache := newMenuFixture()
	cache.err = errors.New("redis down")

	items, err := svc.List(context.Background(), MenuFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 1, db.menuLoads)
}

func TestMenuList_DBError(t *testing.T) {
	svc, db, _ := newMenuFixture()
	db.failWith = errDBDown

	_, err := svc.List(context.Background(), MenuFilter{})
	assert.ErrorIs(t, err, errDBDown)
}

func TestMenuGet(t *testing.T) {
	svc, _, _ := newMenuFixture()
	ctx := context.Background()

	item, err := svc.Get(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, "Loaded Fries", item.Name)
	assert.Equal(t, int64(750), item.Price)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
