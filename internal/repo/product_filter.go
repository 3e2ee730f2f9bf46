package repo

// Product ordering fields accepted by ProductFilter.OrderBy.
const (
	OrderByName      = "name"
	OrderByStock     = "stock"
	OrderByPrice     = "price"
	OrderByCategory  = "category"
	OrderByCreatedAt = "created_at"
)

// ProductFilter describes the fixed search shape served to the front end:
// case-insensitive substring match across name/sku/barcode/description plus
// optional category, status and stock-range filters, deterministic ordering
// and pagination.
type ProductFilter struct {
	Query    string
	Category string
	Status   string
	MinStock *int
	MaxStock *int
	OrderBy  string
	Desc     bool
	Offset   *int
	Limit    *int
}
