// Package journal fronts the append-only stock-movement log. Recording a
// movement is the only way any part of the system changes a product's
// stock, and every record leaves the catalog and the journal agreeing.
package journal

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/NathanielMuller/ScanShelf/internal/cache"
	"github.com/NathanielMuller/ScanShelf/internal/models"
	"github.com/NathanielMuller/ScanShelf/internal/repo"
	"github.com/NathanielMuller/ScanShelf/internal/watch"
)

// DefaultRecentLimit is the page size of the "recent movements" view.
const DefaultRecentLimit = 50

// Config wires a Service. Cache is required; ProductCache may be nil.
type Config struct {
	Movements    repo.MovementRepository
	Products     repo.ProductRepository
	Cache        *cache.Coordinator
	ProductCache *cache.ProductCache
	ShortTTL     time.Duration
	RecentLimit  int
	Logger       zerolog.Logger
}

// Service is the movement journal facade used by the HTTP layer.
type Service struct {
	movements   repo.MovementRepository
	products    repo.ProductRepository
	cache       *cache.Coordinator
	pcache      *cache.ProductCache
	log         zerolog.Logger
	shortTTL    time.Duration
	recentLimit int

	feed *watch.Feed[[]models.Movement]
}

// NewService builds the journal service.
func NewService(cfg Config) *Service {
	if cfg.ShortTTL <= 0 {
		cfg.ShortTTL = time.Minute
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultRecentLimit
	}
	return &Service{
		movements:   cfg.Movements,
		products:    cfg.Products,
		cache:       cfg.Cache,
		pcache:      cfg.ProductCache,
		log:         cfg.Logger,
		shortTTL:    cfg.ShortTTL,
		recentLimit: cfg.RecentLimit,
		feed:        watch.NewFeed[[]models.Movement](),
	}
}

func validateEntry(e repo.MovementEntry) error {
	if !e.Type.Valid() {
		return &repo.ValidationError{Field: "type", Reason: "type must be inflow, outflow or adjustment"}
	}
	if !e.Reason.Valid() {
		return &repo.ValidationError{Field: "reason", Reason: "reason must be sale, loss, restock or return"}
	}
	switch e.Type {
	case models.MovementAdjustment:
		// Quantity is the absolute target here; zero is a legal shelf count.
		if e.Quantity < 0 {
			return &repo.ValidationError{Field: "quantity", Reason: "target stock cannot be negative"}
		}
	default:
		if e.Quantity <= 0 {
			return &repo.ValidationError{Field: "quantity", Reason: "quantity must be greater than zero"}
		}
	}
	return nil
}

// Record validates and commits one movement. The repository runs the
// read-compute-write sequence atomically; on success the affected read
// views are invalidated and a fresh snapshot is published.
func (s *Service) Record(ctx context.Context, entry repo.MovementEntry) (models.Movement, error) {
	if err := validateEntry(entry); err != nil {
		return models.Movement{}, err
	}

	movement, err := s.movements.Record(entry)
	if err != nil {
		return models.Movement{}, err
	}

	s.cache.Invalidate(cache.KeyRecentMovements, cache.KeyMovementStats, cache.KeyAllProducts,
		cache.KeyLowStock, cache.KeyMetrics, cache.ProductKey(entry.ProductID))
	s.pcache.Delete(ctx, entry.ProductID)
	s.publishRecent()

	if p, err := s.products.GetByID(entry.ProductID); err == nil && p.LowStock() {
		s.log.Warn().Int("product_id", p.ID).Str("name", p.Name).
			Int("stock", p.Stock).Int("min_stock", p.MinStock).
			Msg("product at or below minimum stock")
	}

	s.log.Info().Str("movement_id", movement.ID).Int("product_id", movement.ProductID).
		Str("type", string(movement.Type)).Int("previous", movement.PreviousStock).
		Int("new", movement.NewStock).Msg("movement recorded")
	return movement, nil
}

// Recent returns the cached newest movements.
func (s *Service) Recent(ctx context.Context) ([]models.Movement, error) {
	return cache.Get(ctx, s.cache, cache.KeyRecentMovements, s.shortTTL, func(ctx context.Context) ([]models.Movement, error) {
		movements, _, err := s.movements.Query(repo.MovementFilter{Limit: &s.recentLimit})
		return movements, err
	})
}

// QueryResult is one page of journal output.
type QueryResult struct {
	Movements  []models.Movement `json:"movements"`
	TotalCount int               `json:"total_count"`
}

// Query runs a filtered journal read. Filter shapes are caller-supplied,
// so they bypass the fixed-key cache.
func (s *Service) Query(ctx context.Context, mf repo.MovementFilter) (QueryResult, error) {
	movements, total, err := s.movements.Query(mf)
	if err != nil {
		return QueryResult{}, err
	}
	return QueryResult{Movements: movements, TotalCount: total}, nil
}

// Stats aggregates movements by type and reason. The unfiltered all-time
// shape is cached; date-ranged requests read the store.
func (s *Service) Stats(ctx context.Context, since, until *time.Time) (repo.MovementStats, error) {
	if since == nil && until == nil {
		return cache.Get(ctx, s.cache, cache.KeyMovementStats, s.shortTTL, func(ctx context.Context) (repo.MovementStats, error) {
			return s.movements.Stats(repo.MovementFilter{})
		})
	}
	return s.movements.Stats(repo.MovementFilter{Since: since, Until: until})
}

// Metrics returns the cached dashboard summary.
func (s *Service) Metrics(ctx context.Context) (repo.Metrics, error) {
	return cache.Get(ctx, s.cache, cache.KeyMetrics, s.shortTTL, func(ctx context.Context) (repo.Metrics, error) {
		return s.movements.Metrics()
	})
}

// Feed exposes the push-updated "recent movements" snapshot.
func (s *Service) Feed() *watch.Feed[[]models.Movement] { return s.feed }

func (s *Service) publishRecent() {
	movements, _, err := s.movements.Query(repo.MovementFilter{Limit: &s.recentLimit})
	if err != nil {
		s.log.Warn().Err(err).Msg("could not refresh movements snapshot")
		return
	}
	s.feed.Publish(movements)
}
