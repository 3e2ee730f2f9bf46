package repo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NathanielMuller/ScanShelf/internal/models"
)

// MemoryStore is the embedded, single-device implementation of the product,
// category and movement repositories. One store owns all three tables behind
// a single mutex, so the journal's read-compute-write sequence runs as one
// critical section and concurrent movements against the same product
// serialize instead of losing updates. Products are keyed by ID with
// secondary indexes on SKU and barcode, so exact lookups never scan.
type MemoryStore struct {
	mu sync.Mutex

	products     map[int]models.Product
	skuIndex     map[string]int
	barcodeIndex map[string]int
	categories   []models.Category
	movements    []models.Movement

	nextProductID  int
	nextCategoryID int

	now func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:       make(map[int]models.Product),
		skuIndex:       make(map[string]int),
		barcodeIndex:   make(map[string]int),
		nextProductID:  1,
		nextCategoryID: 1,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Products returns the store's ProductRepository view.
func (s *MemoryStore) Products() ProductRepository { return (*memoryProducts)(s) }

// Categories returns the store's CategoryRepository view.
func (s *MemoryStore) Categories() CategoryRepository { return (*memoryCategories)(s) }

// Movements returns the store's MovementRepository view.
func (s *MemoryStore) Movements() MovementRepository { return (*memoryMovements)(s) }

type memoryProducts MemoryStore
type memoryCategories MemoryStore
type memoryMovements MemoryStore

// ---- products ----

// Create adds a new product after checking sku/barcode uniqueness.
func (r *memoryProducts) Create(product models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := (*MemoryStore)(r).checkUniqueCodes(product.SKU, product.Barcode, 0); err != nil {
		return models.Product{}, err
	}

	product.ID = r.nextProductID
	r.nextProductID++
	if product.Status == "" {
		product.Status = models.StatusActive
	}
	r.products[product.ID] = product
	r.skuIndex[product.SKU] = product.ID
	r.barcodeIndex[product.Barcode] = product.ID
	return product, nil
}

// Update modifies a product's non-stock fields. The stored stock value is
// always preserved; only the movement journal writes it.
func (r *memoryProducts) Update(product models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := (*MemoryStore)(r).checkUniqueCodes(product.SKU, product.Barcode, product.ID); err != nil {
		return models.Product{}, err
	}

	prev, ok := r.products[product.ID]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	product.Stock = prev.Stock
	product.CreatedAt = prev.CreatedAt
	delete(r.skuIndex, prev.SKU)
	delete(r.barcodeIndex, prev.Barcode)
	r.products[product.ID] = product
	r.skuIndex[product.SKU] = product.ID
	r.barcodeIndex[product.Barcode] = product.ID
	return product, nil
}

// Delete removes a product. Products that own journal entries cannot be
// deleted; callers archive them instead.
func (r *memoryProducts) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.movements {
		if m.ProductID == id {
			return ErrProductHasMovements
		}
	}
	p, ok := r.products[id]
	if !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	delete(r.skuIndex, p.SKU)
	delete(r.barcodeIndex, p.Barcode)
	return nil
}

// GetByID retrieves a product by its ID.
func (r *memoryProducts) GetByID(id int) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (*MemoryStore)(r).productByID(id)
}

// GetBySKU retrieves a product by its unique SKU.
func (r *memoryProducts) GetBySKU(sku string) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.skuIndex[sku]; ok {
		return r.products[id], nil
	}
	return models.Product{}, ErrProductNotFound
}

// GetByBarcode retrieves a product by its unique barcode.
func (r *memoryProducts) GetByBarcode(barcode string) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.barcodeIndex[barcode]; ok {
		return r.products[id], nil
	}
	return models.Product{}, ErrProductNotFound
}

// GetAll retrieves all products ordered by ID.
func (r *memoryProducts) GetAll() ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (*MemoryStore)(r).sortedProducts(), nil
}

// UsedCodes returns the code snapshot consumed by the generator.
func (r *memoryProducts) UsedCodes() ([]string, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	skus := make([]string, 0, len(r.skuIndex))
	for sku := range r.skuIndex {
		skus = append(skus, sku)
	}
	barcodes := make([]string, 0, len(r.barcodeIndex))
	for barcode := range r.barcodeIndex {
		barcodes = append(barcodes, barcode)
	}
	return skus, barcodes, nil
}

func matchesProductFilter(p models.Product, pf ProductFilter) bool {
	if pf.Query != "" {
		q := strings.ToLower(pf.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.SKU), q) &&
			!strings.Contains(strings.ToLower(p.Barcode), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if pf.Category != "" && p.Category != pf.Category {
		return false
	}
	if pf.Status != "" && p.Status != pf.Status {
		return false
	}
	if pf.MinStock != nil && p.Stock < *pf.MinStock {
		return false
	}
	if pf.MaxStock != nil && p.Stock > *pf.MaxStock {
		return false
	}
	return true
}

func orderProducts(products []models.Product, orderBy string, desc bool) {
	less := func(a, b models.Product) bool { return a.Name < b.Name }
	switch orderBy {
	case OrderByStock:
		less = func(a, b models.Product) bool { return a.Stock < b.Stock }
	case OrderByPrice:
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case OrderByCategory:
		less = func(a, b models.Product) bool { return a.Category < b.Category }
	case OrderByCreatedAt:
		less = func(a, b models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool {
		if desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

// Search filters, orders and paginates products, returning the page and the
// total match count.
func (r *memoryProducts) Search(pf ProductFilter) ([]models.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var filtered []models.Product
	for _, p := range (*MemoryStore)(r).sortedProducts() {
		if matchesProductFilter(p, pf) {
			filtered = append(filtered, p)
		}
	}
	orderProducts(filtered, pf.OrderBy, pf.Desc)

	start := 0
	if pf.Offset != nil {
		start = clamp(*pf.Offset, 0, len(filtered))
	}
	end := len(filtered)
	if pf.Limit != nil && *pf.Limit > 0 {
		end = clamp(start+*pf.Limit, start, len(filtered))
	}
	return filtered[start:end], len(filtered), nil
}

// ---- categories ----

// Create adds a new category after checking name/code uniqueness.
func (r *memoryCategories) Create(category models.Category) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if c.Name == category.Name {
			return models.Category{}, &ConflictError{Field: "name", Value: category.Name}
		}
		if c.Code == category.Code {
			return models.Category{}, &ConflictError{Field: "code", Value: category.Code}
		}
	}

	category.ID = r.nextCategoryID
	r.nextCategoryID++
	r.categories = append(r.categories, category)
	return category, nil
}

// Update modifies an existing category.
func (r *memoryCategories) Update(category models.Category) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if c.ID == category.ID {
			continue
		}
		if c.Name == category.Name {
			return models.Category{}, &ConflictError{Field: "name", Value: category.Name}
		}
		if c.Code == category.Code {
			return models.Category{}, &ConflictError{Field: "code", Value: category.Code}
		}
	}

	for i, c := range r.categories {
		if c.ID == category.ID {
			r.categories[i] = category
			return category, nil
		}
	}
	return models.Category{}, ErrCategoryNotFound
}

// Deactivate soft-disables a category. Referenced categories are never
// hard-deleted, so products keep a valid reference.
func (r *memoryCategories) Deactivate(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.categories {
		if c.ID == id {
			r.categories[i].IsActive = false
			return nil
		}
	}
	return ErrCategoryNotFound
}

// GetByID retrieves a category by its ID.
func (r *memoryCategories) GetByID(id int) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Category{}, ErrCategoryNotFound
}

// GetByName retrieves a category by its unique name.
func (r *memoryCategories) GetByName(name string) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return models.Category{}, ErrCategoryNotFound
}

// GetAll retrieves all categories.
func (r *memoryCategories) GetAll() ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

// ---- movements ----

// Record appends a journal entry and writes the product's new stock in the
// same critical section. Either both happen or neither does: every failure
// path returns before the store is touched.
func (r *memoryMovements) Record(entry MovementEntry) (models.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := (*MemoryStore)(r)
	product, err := s.productByID(entry.ProductID)
	if err != nil {
		return models.Movement{}, err
	}

	newStock, err := applyMovement(product.Stock, entry.Type, entry.Quantity)
	if err != nil {
		return models.Movement{}, err
	}

	movement := models.Movement{
		ID:            uuid.NewString(),
		ProductID:     product.ID,
		ProductName:   product.Name,
		Type:          entry.Type,
		Quantity:      entry.Quantity,
		PreviousStock: product.Stock,
		NewStock:      newStock,
		Reason:        entry.Reason,
		Notes:         entry.Notes,
		UserID:        entry.UserID,
		CreatedAt:     s.now(),
	}
	r.movements = append(r.movements, movement)

	product.Stock = newStock
	product.UpdatedAt = movement.CreatedAt
	r.products[product.ID] = product
	return movement, nil
}

// applyMovement computes the post-movement stock. For outflow the check runs
// before any write, so insufficient stock leaves the store unchanged.
func applyMovement(previous int, t models.MovementType, quantity int) (int, error) {
	switch t {
	case models.MovementInflow:
		return previous + quantity, nil
	case models.MovementOutflow:
		if previous-quantity < 0 {
			return 0, ErrInsufficientStock
		}
		return previous - quantity, nil
	case models.MovementAdjustment:
		return quantity, nil
	}
	return 0, &ValidationError{Field: "type", Reason: "unknown movement type"}
}

func matchesMovementFilter(m models.Movement, mf MovementFilter) bool {
	if mf.ProductID != nil && m.ProductID != *mf.ProductID {
		return false
	}
	if mf.Type != nil && m.Type != *mf.Type {
		return false
	}
	if mf.Reason != nil && m.Reason != *mf.Reason {
		return false
	}
	if mf.Since != nil && m.CreatedAt.Before(*mf.Since) {
		return false
	}
	if mf.Until != nil && m.CreatedAt.After(*mf.Until) {
		return false
	}
	return true
}

// Query returns movements matching the filter, newest first, plus the total
// match count.
func (r *memoryMovements) Query(mf MovementFilter) ([]models.Movement, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var filtered []models.Movement
	for _, m := range r.movements {
		if matchesMovementFilter(m, mf) {
			filtered = append(filtered, m)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[j].CreatedAt.Before(filtered[i].CreatedAt)
	})

	start := 0
	if mf.Offset != nil {
		start = clamp(*mf.Offset, 0, len(filtered))
	}
	// Same page size policy as the SQL implementation: a missing or
	// oversized limit is replaced by defaultMovementLimit.
	limit := defaultMovementLimit
	if mf.Limit != nil && *mf.Limit > 0 {
		limit = min(*mf.Limit, defaultMovementLimit)
	}
	end := clamp(start+limit, start, len(filtered))
	return filtered[start:end], len(filtered), nil
}

// Stats aggregates the filtered movement set by type and reason.
func (r *memoryMovements) Stats(mf MovementFilter) (MovementStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := MovementStats{
		ByType:   map[models.MovementType]TypeStats{},
		ByReason: map[models.MovementReason]TypeStats{},
	}
	for _, m := range r.movements {
		if !matchesMovementFilter(m, mf) {
			continue
		}
		stats.Total++
		byType := stats.ByType[m.Type]
		byType.Count++
		byType.Quantity += m.Quantity
		stats.ByType[m.Type] = byType

		byReason := stats.ByReason[m.Reason]
		byReason.Count++
		byReason.Quantity += m.Quantity
		stats.ByReason[m.Reason] = byReason
	}
	return stats, nil
}

// CountByProduct returns the number of journal entries owned by a product.
func (r *memoryMovements) CountByProduct(productID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.movements {
		if m.ProductID == productID {
			count++
		}
	}
	return count, nil
}

// Metrics summarizes the store for the dashboard.
func (r *memoryMovements) Metrics() (Metrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := Metrics{TotalMovements: len(r.movements)}
	for _, p := range r.products {
		if p.Status == models.StatusArchived {
			continue
		}
		m.TotalProducts++
		if p.LowStock() {
			m.LowStockCount++
		}
	}
	return m, nil
}

// ---- shared helpers (callers hold s.mu) ----

func (s *MemoryStore) productByID(id int) (models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return models.Product{}, ErrProductNotFound
}

func (s *MemoryStore) sortedProducts() []models.Product {
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) checkUniqueCodes(sku, barcode string, selfID int) error {
	if id, ok := s.skuIndex[sku]; ok && sku != "" && id != selfID {
		return &ConflictError{Field: "sku", Value: sku}
	}
	if id, ok := s.barcodeIndex[barcode]; ok && barcode != "" && id != selfID {
		return &ConflictError{Field: "barcode", Value: barcode}
	}
	return nil
}
