// Package catalog resolves the catalog records referenced by a checkout in as few
// storage round trips as possible.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"checkout-engine/internal/model"
	"checkout-engine/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Lookup holds the resolved catalog records keyed by catalog ID.
// Requested IDs that do not exist are simply absent.
type Lookup struct {
	Physical map[string]model.PhysicalItem
	Courses  map[string]model.DigitalCourse
}

// NewLookup returns an empty lookup.
func NewLookup() *Lookup {
	return &Lookup{
		Physical: make(map[string]model.PhysicalItem),
		Courses:  make(map[string]model.DigitalCourse),
	}
}

// Has reports whether the record referenced by a requested item was resolved.
func (l *Lookup) Has(itemType model.ItemType, id string) bool {
	switch itemType {
	case model.ItemTypePhysical:
		_, ok := l.Physical[id]
		return ok
	case model.ItemTypeDigitalCourse:
		_, ok := l.Courses[id]
		return ok
	}
	return false
}

// Loader batches catalog reads for a checkout.
type Loader struct {
	repo        repository.CatalogRepository
	concurrency int
	logger      zerolog.Logger
}

// NewLoader creates a catalog batch loader. concurrency bounds the parallel course reads.
func NewLoader(repo repository.CatalogRepository, concurrency int, logger zerolog.Logger) *Loader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Loader{
		repo:        repo,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load resolves every distinct ID referenced by items.
// Physical items are read with a single batched query; courses are read concurrently,
// one ID per read.
func (l *Loader) Load(ctx context.Context, items []model.CheckoutItemRequest) (*Lookup, error) {
	physicalIDs, courseIDs := partition(items)
	lookup := NewLookup()

	if len(physicalIDs) > 0 {
		records, err := l.repo.GetPhysicalItemsByIDs(ctx, physicalIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load physical items: %w", err)
		}
		for _, r := range records {
			lookup.Physical[r.ID] = r
		}
	}

	if len(courseIDs) > 0 {
		if err := l.loadCourses(ctx, courseIDs, lookup); err != nil {
			return nil, err
		}
	}

	l.logger.Debug().
		Int("physical_requested", len(physicalIDs)).
		Int("physical_found", len(lookup.Physical)).
		Int("courses_requested", len(courseIDs)).
		Int("courses_found", len(lookup.Courses)).
		Msg("catalog records loaded")

	return lookup, nil
}

func (l *Loader) loadCourses(ctx context.Context, ids []string, lookup *Lookup) error {
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			course, err := l.repo.GetDigitalCourseByID(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load course %s: %w", id, err)
			}
			if course == nil {
				return nil
			}
			mu.Lock()
			lookup.Courses[id] = *course
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}

// partition splits requested items by type and de-duplicates IDs, keeping first-seen order.
func partition(items []model.CheckoutItemRequest) (physical, courses []string) {
	seenPhysical := make(map[string]struct{})
	seenCourses := make(map[string]struct{})

	for _, item := range items {
		switch item.ItemType {
		case model.ItemTypePhysical:
			if _, ok := seenPhysical[item.CatalogID]; !ok {
				seenPhysical[item.CatalogID] = struct{}{}
				physical = append(physical, item.CatalogID)
			}
		case model.ItemTypeDigitalCourse:
			if _, ok := seenCourses[item.CatalogID]; !ok {
				seenCourses[item.CatalogID] = struct{}{}
				courses = append(courses, item.CatalogID)
			}
		}
	}

	return physical, courses
}
