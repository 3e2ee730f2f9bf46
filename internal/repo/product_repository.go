package repo

import "github.com/NathanielMuller/ScanShelf/internal/models"

// ProductRepository defines the interface for product data operations.
//
// Stock is deliberately absent from Update: the only legal stock write is
// MovementRepository.Record, which mutates product and journal together.
type ProductRepository interface {
	Create(product models.Product) (models.Product, error)
	Update(product models.Product) (models.Product, error)
	Delete(id int) error
	GetByID(id int) (models.Product, error)
	GetBySKU(sku string) (models.Product, error)
	GetByBarcode(barcode string) (models.Product, error)
	GetAll() ([]models.Product, error)
	Search(pf ProductFilter) ([]models.Product, int, error)
	// UsedCodes returns every SKU and barcode currently in the catalog,
	// the snapshot input of the code generator.
	UsedCodes() (skus []string, barcodes []string, err error)
}
