package repo

import "github.com/NathanielMuller/ScanShelf/internal/models"

// CategoryRepository defines the interface for category data operations.
// Categories referenced by products cannot be hard-deleted; Deactivate
// flips the soft-disable flag instead.
type CategoryRepository interface {
	Create(category models.Category) (models.Category, error)
	Update(category models.Category) (models.Category, error)
	Deactivate(id int) error
	GetByID(id int) (models.Category, error)
	GetByName(name string) (models.Category, error)
	GetAll() ([]models.Category, error)
}
