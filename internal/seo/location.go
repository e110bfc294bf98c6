package seo

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultLocationCode is the provider's national (United States) location.
const DefaultLocationCode = 2840

// Location is one geography known to the keyword-data provider.
type Location struct {
	Code int
	Name string // "Milwaukee,Wisconsin,United States"
	Type string // "City", "State", "Country", ...
}

// LocationLister lists the provider's geographies.
type LocationLister interface {
	Locations(ctx context.Context) ([]Location, error)
}

// LocationResolver maps a free-text city to a provider location code.
// Implementations never fail; they fall back to a default code.
type LocationResolver interface {
	Resolve(ctx context.Context, city string) int
}

// LocationIndex resolves cities against the provider's location list. The
// list is fetched on first use and kept for the life of the index; a failed
// fetch is not cached.
type LocationIndex struct {
	lister   LocationLister
	fallback int

	mu     sync.Mutex
	byCity map[string]int
}

// NewLocationIndex creates a resolver backed by lister. A fallback of 0 means
// DefaultLocationCode.
func NewLocationIndex(lister LocationLister, fallback int) *LocationIndex {
	if fallback == 0 {
		fallback = DefaultLocationCode
	}
	return &LocationIndex{lister: lister, fallback: fallback}
}

// Resolve returns the code of the City location whose name matches the
// city case-insensitively, or the fallback code.
func (l *LocationIndex) Resolve(ctx context.Context, city string) int {
	c := foldCase(CleanCity(city))
	if c == "" {
		return l.fallback
	}

	index, err := l.load(ctx)
	if err != nil {
		zap.L().Warn("seo: location list unavailable, using default",
			zap.String("city", city),
			zap.Int("location_code", l.fallback),
			zap.Error(err),
		)
		return l.fallback
	}

	if code, ok := index[c]; ok {
		return code
	}
	zap.L().Debug("seo: no location match, using default",
		zap.String("city", city),
		zap.Int("location_code", l.fallback),
	)
	return l.fallback
}

func (l *LocationIndex) load(ctx context.Context) (map[string]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.byCity != nil {
		return l.byCity, nil
	}
	if l.lister == nil {
		return map[string]int{}, nil
	}

	locs, err := l.lister.Locations(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(locs))
	for _, loc := range locs {
		if loc.Type != "City" {
			continue
		}
		name, _, _ := strings.Cut(loc.Name, ",")
		key := foldCase(strings.TrimSpace(name))
		// First entry wins for duplicate city names.
		if _, dup := index[key]; !dup {
			index[key] = loc.Code
		}
	}
	l.byCity = index
	return index, nil
}

// StaticResolver always resolves to the same code.
type StaticResolver int

// Resolve implements LocationResolver.
func (s StaticResolver) Resolve(context.Context, string) int {
	return int(s)
}
