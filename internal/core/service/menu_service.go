package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
	"github.com/rl1809/aura-kitchen/internal/metrics"
	"github.com/rl1809/aura-kitchen/internal/port"
)

// CategoryAll disables category filtering.
const CategoryAll = "All"

type MenuFilter struct {
	Category    string
	Search      string
	PopularOnly bool
}

// MenuService serves the catalog cache-aside: the full menu is kept in the
// cache and filtered in memory.
type MenuService struct {
	db    port.MenuRepository
	cache port.CacheRepository
	ttl   time.Duration
	group singleflight.Group
	log   logrus.FieldLogger
}

func NewMenuService(db port.MenuRepository, cache port.CacheRepository, ttl time.Duration, log logrus.FieldLogger) *MenuService {
	return &MenuService{db: db, cache: cache, ttl: ttl, log: log}
}

func (s *MenuService) List(ctx context.Context, f MenuFilter) ([]domain.MenuItem, error) {
	if f.Category != "" && f.Category != CategoryAll && !domain.Category(f.Category).Valid() {
		names := []string{CategoryAll}
		for _, c := range domain.Categories {
			names = append(names, string(c))
		}
		return nil, domain.NewValidationError("category", "must be one of: "+strings.Join(names, ", "))
	}

	items, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.MenuItem, 0, len(items))
	for _, it := range items {
		if f.Category != "" && f.Category != CategoryAll && string(it.Category) != f.Category {
			continue
		}
		if f.PopularOnly && !it.Popular {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *MenuService) Get(ctx context.Context, id int64) (*domain.MenuItem, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	return s.db.GetMenuItem(ctx, id)
}

func (s *MenuService) all(ctx context.Context) ([]domain.MenuItem, error) {
	if items, ok := s.cached(ctx); ok {
		return items, nil
	}

	// singleflight collapses concurrent cache misses into one query.
	v, err, _ := s.group.Do("menu", func() (interface{}, error) {
		if items, ok := s.cached(ctx); ok {
			return items, nil
		}
		items, err := s.db.ListMenuItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("list menu: %w", err)
		}
		data, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("encode menu: %w", err)
		}
		if err := s.cache.SetMenu(ctx, data, s.ttl); err != nil {
			s.log.WithError(err).Warn("menu cache write failed")
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.MenuItem), nil
}

// cached treats cache errors as misses; the database stays authoritative.
func (s *MenuService) cached(ctx context.Context) ([]domain.MenuItem, bool) {
	data, ok, err := s.cache.GetMenu(ctx)
	if err != nil {
		s.log.WithError(err).Warn("menu cache read failed")
		return nil, false
	}
	if !ok {
		metrics.RecordMenuCache(false)
		return nil, false
	}

	var items []domain.MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.WithError(err).Warn("menu cache entry corrupt")
		return nil, false
	}
	metrics.RecordMenuCache(true)
	return items, true
}
