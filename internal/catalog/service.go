// Package catalog owns the product and category side of the inventory
// ledger: validation, uniqueness, code minting on create, the archive
// policy for products with history, and the cached read views served to the
// front end.
package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/NathanielMuller/ScanShelf/internal/cache"
	"github.com/NathanielMuller/ScanShelf/internal/codegen"
	"github.com/NathanielMuller/ScanShelf/internal/lookup"
	"github.com/NathanielMuller/ScanShelf/internal/models"
	"github.com/NathanielMuller/ScanShelf/internal/repo"
	"github.com/NathanielMuller/ScanShelf/internal/scan"
	"github.com/NathanielMuller/ScanShelf/internal/watch"
)

// Default TTLs: short for frequently-changing aggregates, long for per-id
// lookups.
const (
	DefaultShortTTL = time.Minute
	DefaultLongTTL  = 10 * time.Minute
)

// Config wires a Service. Cache is required; ProductCache and Lookup are
// optional collaborators and may be nil.
type Config struct {
	Products     repo.ProductRepository
	Categories   repo.CategoryRepository
	Movements    repo.MovementRepository
	Cache        *cache.Coordinator
	ProductCache *cache.ProductCache
	Lookup       *lookup.Client
	ShortTTL     time.Duration
	LongTTL      time.Duration
	Logger       zerolog.Logger
}

// Service is the catalog store facade used by the HTTP layer.
type Service struct {
	products   repo.ProductRepository
	categories repo.CategoryRepository
	movements  repo.MovementRepository
	cache      *cache.Coordinator
	pcache     *cache.ProductCache
	meta       *lookup.Client
	log        zerolog.Logger

	shortTTL time.Duration
	longTTL  time.Duration

	productsFeed   *watch.Feed[[]models.Product]
	categoriesFeed *watch.Feed[[]models.Category]

	// createMu serializes the scan-existing-codes + insert sequence so two
	// concurrent creations cannot mint the same SKU sequence number.
	createMu sync.Mutex
	now      func() time.Time
}

// NewService builds the catalog service.
func NewService(cfg Config) *Service {
	if cfg.ShortTTL <= 0 {
		cfg.ShortTTL = DefaultShortTTL
	}
	if cfg.LongTTL <= 0 {
		cfg.LongTTL = DefaultLongTTL
	}
	return &Service{
		products:       cfg.Products,
		categories:     cfg.Categories,
		movements:      cfg.Movements,
		cache:          cfg.Cache,
		pcache:         cfg.ProductCache,
		meta:           cfg.Lookup,
		log:            cfg.Logger,
		shortTTL:       cfg.ShortTTL,
		longTTL:        cfg.LongTTL,
		productsFeed:   watch.NewFeed[[]models.Product](),
		categoriesFeed: watch.NewFeed[[]models.Category](),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateProductInput carries the fields of a new product. SKU and Barcode
// are minted by the code generator when left empty.
type CreateProductInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Description string  `json:"description"`
	SKU         string  `json:"sku"`
	Barcode     string  `json:"barcode"`
	Stock       int     `json:"stock"`
	MinStock    int     `json:"min_stock"`
	Price       float64 `json:"price"`
	ImageKey    string  `json:"image_key"`
}

// UpdateProductInput is a partial update of non-stock fields. Nil pointers
// leave the field untouched. Stock is deliberately absent: the movement
// journal is the only legal stock writer.
type UpdateProductInput struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Brand       *string  `json:"brand"`
	Description *string  `json:"description"`
	SKU         *string  `json:"sku"`
	Barcode     *string  `json:"barcode"`
	MinStock    *int     `json:"min_stock"`
	Price       *float64 `json:"price"`
	ImageKey    *string  `json:"image_key"`
	Status      *string  `json:"status"`
}

func validateCreate(in CreateProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &repo.ValidationError{Field: "name", Reason: "name is required"}
	}
	if strings.TrimSpace(in.Category) == "" {
		return &repo.ValidationError{Field: "category", Reason: "category is required"}
	}
	if in.Stock < 0 {
		return &repo.ValidationError{Field: "stock", Reason: "stock cannot be negative"}
	}
	if in.MinStock < 0 {
		return &repo.ValidationError{Field: "min_stock", Reason: "minimum stock cannot be negative"}
	}
	if in.Price < 0 {
		return &repo.ValidationError{Field: "price", Reason: "price cannot be negative"}
	}
	if in.SKU != "" {
		if _, ok := codegen.ParseSKU(in.SKU); !ok {
			return &repo.ValidationError{Field: "sku", Reason: "sku does not match CAT-BRD-NNN"}
		}
	}
	if in.Barcode != "" && !codegen.ValidateBarcode(in.Barcode) {
		return &repo.ValidationError{Field: "barcode", Reason: "barcode is not a valid EAN-13 code"}
	}
	return nil
}

// Create validates, mints missing codes from the current code snapshot and
// persists the product. When the input only carries a scanned barcode, the
// external metadata lookup fills in what it can before validation.
func (s *Service) Create(ctx context.Context, in CreateProductInput) (models.Product, error) {
	if in.Barcode != "" && strings.TrimSpace(in.Name) == "" {
		if meta, ok := s.meta.ByBarcode(ctx, in.Barcode); ok {
			in.Name = meta.Name
			if in.Brand == "" {
				in.Brand = meta.Brand
			}
			if in.Category == "" {
				in.Category = meta.Category
			}
			if in.Description == "" {
				in.Description = meta.Description
			}
		}
	}

	if err := validateCreate(in); err != nil {
		return models.Product{}, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	if _, err := s.ensureCategory(in.Category); err != nil {
		return models.Product{}, err
	}

	skus, barcodes, err := s.products.UsedCodes()
	if err != nil {
		return models.Product{}, err
	}
	if in.SKU == "" {
		in.SKU = codegen.GenerateSKU(in.Category, in.Brand, skus)
	}
	if in.Barcode == "" {
		in.Barcode, err = codegen.GenerateBarcode(barcodes)
		if err != nil {
			return models.Product{}, err
		}
	}

	now := s.now()
	created, err := s.products.Create(models.Product{
		Name:        strings.TrimSpace(in.Name),
		SKU:         in.SKU,
		Barcode:     in.Barcode,
		Category:    in.Category,
		Stock:       in.Stock,
		MinStock:    in.MinStock,
		Price:       in.Price,
		Description: in.Description,
		Brand:       in.Brand,
		ImageKey:    in.ImageKey,
		Status:      models.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return models.Product{}, err
	}

	s.cache.Invalidate(cache.KeyAllProducts, cache.KeyLowStock, cache.KeyMetrics)
	s.pcache.Set(ctx, created)
	s.publishProducts()
	s.log.Info().Int("product_id", created.ID).Str("sku", created.SKU).Msg("product created")
	return created, nil
}

// Update merges the partial input over the current record, re-checking
// code uniqueness when sku or barcode change.
func (s *Service) Update(ctx context.Context, id int, in UpdateProductInput) (models.Product, error) {
	current, err := s.products.GetByID(id)
	if err != nil {
		return models.Product{}, err
	}

	if in.Name != nil {
		current.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		current.Category = *in.Category
	}
	if in.Brand != nil {
		current.Brand = *in.Brand
	}
	if in.Description != nil {
		current.Description = *in.Description
	}
	if in.SKU != nil {
		current.SKU = *in.SKU
	}
	if in.Barcode != nil {
		current.Barcode = *in.Barcode
	}
	if in.MinStock != nil {
		current.MinStock = *in.MinStock
	}
	if in.Price != nil {
		current.Price = *in.Price
	}
	if in.ImageKey != nil {
		current.ImageKey = *in.ImageKey
	}
	if in.Status != nil {
		if *in.Status != models.StatusActive && *in.Status != models.StatusArchived {
			return models.Product{}, &repo.ValidationError{Field: "status", Reason: "unknown status"}
		}
		current.Status = *in.Status
	}

	if err := validateCreate(CreateProductInput{
		Name:     current.Name,
		Category: current.Category,
		MinStock: current.MinStock,
		Price:    current.Price,
		SKU:      current.SKU,
		Barcode:  current.Barcode,
	}); err != nil {
		return models.Product{}, err
	}
	if _, err := s.ensureCategory(current.Category); err != nil {
		return models.Product{}, err
	}

	current.UpdatedAt = s.now()
	updated, err := s.products.Update(current)
	if err != nil {
		return models.Product{}, err
	}

	s.invalidateProduct(ctx, id)
	s.publishProducts()
	return updated, nil
}

// Delete removes a product without journal entries. A product that owns
// movement history is archived instead so the audit trail survives.
func (s *Service) Delete(ctx context.Context, id int) error {
	count, err := s.movements.CountByProduct(id)
	if err != nil {
		return err
	}

	if count > 0 {
		current, err := s.products.GetByID(id)
		if err != nil {
			return err
		}
		current.Status = models.StatusArchived
		current.UpdatedAt = s.now()
		if _, err := s.products.Update(current); err != nil {
			return err
		}
		s.log.Info().Int("product_id", id).Int("movements", count).Msg("product archived, history retained")
	} else if err := s.products.Delete(id); err != nil {
		return err
	}

	s.invalidateProduct(ctx, id)
	s.publishProducts()
	return nil
}

// Get returns one product, served from the redis side-cache when fresh.
func (s *Service) Get(ctx context.Context, id int) (models.Product, error) {
	if p, ok := s.pcache.Get(ctx, id); ok {
		return p, nil
	}
	p, err := s.products.GetByID(id)
	if err != nil {
		return models.Product{}, err
	}
	s.pcache.Set(ctx, p)
	return p, nil
}

// GetBySKU is an exact index lookup; it always reads the store.
func (s *Service) GetBySKU(ctx context.Context, sku string) (models.Product, error) {
	return s.products.GetBySKU(sku)
}

// GetByBarcode is an exact index lookup; it always reads the store.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (models.Product, error) {
	return s.products.GetByBarcode(barcode)
}

// All returns the cached "all products" view.
func (s *Service) All(ctx context.Context) ([]models.Product, error) {
	return cache.Get(ctx, s.cache, cache.KeyAllProducts, s.shortTTL, func(ctx context.Context) ([]models.Product, error) {
		return s.products.GetAll()
	})
}

// LowStock returns the cached list of active products at or below their
// minimum level.
func (s *Service) LowStock(ctx context.Context) ([]models.Product, error) {
	return cache.Get(ctx, s.cache, cache.KeyLowStock, s.shortTTL, func(ctx context.Context) ([]models.Product, error) {
		all, err := s.products.GetAll()
		if err != nil {
			return nil, err
		}
		low := []models.Product{}
		for _, p := range all {
			if p.Status == models.StatusActive && p.LowStock() {
				low = append(low, p)
			}
		}
		return low, nil
	})
}

// SearchResult is one page of catalog search output.
type SearchResult struct {
	Products   []models.Product `json:"products"`
	TotalCount int              `json:"total_count"`
	HasMore    bool             `json:"has_more"`
}

// Search runs the filtered, ordered, paginated catalog query. Search shapes
// are caller-supplied, so they bypass the fixed-key cache and hit the store.
func (s *Service) Search(ctx context.Context, pf repo.ProductFilter) (SearchResult, error) {
	products, total, err := s.products.Search(pf)
	if err != nil {
		return SearchResult{}, err
	}

	shown := len(products)
	if pf.Offset != nil {
		shown += *pf.Offset
	}
	return SearchResult{
		Products:   products,
		TotalCount: total,
		HasMore:    shown < total,
	}, nil
}

// Resolution is the outcome of resolving a scanned barcode: a known catalog
// product, an external metadata suggestion for an unknown one, or neither.
type Resolution struct {
	Product    *models.Product  `json:"product,omitempty"`
	Suggestion *lookup.Metadata `json:"suggestion,omitempty"`
}

// Resolve answers a barcode scan: catalog first, then the external metadata
// service for codes the catalog does not know.
func (s *Service) Resolve(ctx context.Context, barcode string) (Resolution, error) {
	p, err := s.products.GetByBarcode(barcode)
	if err == nil {
		return Resolution{Product: &p}, nil
	}
	if !errors.Is(err, repo.ErrProductNotFound) {
		return Resolution{}, err
	}

	if meta, ok := s.meta.ByBarcode(ctx, barcode); ok {
		return Resolution{Suggestion: &meta}, nil
	}
	return Resolution{}, nil
}

// ResolveNext reads one decoded barcode from the capture device and
// resolves it against the catalog.
func (s *Service) ResolveNext(ctx context.Context, reader scan.BarcodeReader) (Resolution, error) {
	barcode, err := reader.Read(ctx)
	if err != nil {
		return Resolution{}, err
	}
	return s.Resolve(ctx, barcode)
}

// AttachImage captures a picture via the device and stores the returned
// reference key on the product.
func (s *Service) AttachImage(ctx context.Context, id int, camera scan.ImageCapturer) (models.Product, error) {
	key, err := camera.Capture(ctx)
	if err != nil {
		return models.Product{}, err
	}
	return s.Update(ctx, id, UpdateProductInput{ImageKey: &key})
}

func (s *Service) invalidateProduct(ctx context.Context, id int) {
	s.cache.Invalidate(cache.KeyAllProducts, cache.KeyLowStock, cache.KeyMetrics, cache.ProductKey(id))
	s.pcache.Delete(ctx, id)
}

func (s *Service) publishProducts() {
	all, err := s.products.GetAll()
	if err != nil {
		s.log.Warn().Err(err).Msg("could not refresh products snapshot")
		return
	}
	s.productsFeed.Publish(all)
}

func (s *Service) publishCategories() {
	all, err := s.categories.GetAll()
	if err != nil {
		s.log.Warn().Err(err).Msg("could not refresh categories snapshot")
		return
	}
	s.categoriesFeed.Publish(all)
}
