package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/NathanielMuller/ScanShelf/internal/cache"
	"github.com/NathanielMuller/ScanShelf/internal/codegen"
	"github.com/NathanielMuller/ScanShelf/internal/models"
	"github.com/NathanielMuller/ScanShelf/internal/repo"
	"github.com/NathanielMuller/ScanShelf/internal/watch"
)

// CategoryInput carries the mutable fields of a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

func validateCategory(in CategoryInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &repo.ValidationError{Field: "name", Reason: "name is required"}
	}
	if len(in.Code) != 3 || strings.ToUpper(in.Code) != in.Code {
		return &repo.ValidationError{Field: "code", Reason: "code must be 3 uppercase characters"}
	}
	return nil
}

// Categories returns the cached category list.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return cache.Get(ctx, s.cache, cache.KeyAllCategories, s.longTTL, func(ctx context.Context) ([]models.Category, error) {
		return s.categories.GetAll()
	})
}

// CreateCategory adds a category. An empty code is derived from the name.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (models.Category, error) {
	if in.Code == "" {
		in.Code = categoryCodeFor(in.Name)
	}
	if err := validateCategory(in); err != nil {
		return models.Category{}, err
	}

	created, err := s.categories.Create(models.Category{
		Name:        strings.TrimSpace(in.Name),
		Code:        in.Code,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
		IsActive:    true,
	})
	if err != nil {
		return models.Category{}, err
	}

	s.cache.Invalidate(cache.KeyAllCategories)
	s.publishCategories()
	return created, nil
}

// UpdateCategory modifies a category's fields.
func (s *Service) UpdateCategory(ctx context.Context, id int, in CategoryInput) (models.Category, error) {
	current, err := s.categories.GetByID(id)
	if err != nil {
		return models.Category{}, err
	}
	if in.Code == "" {
		in.Code = current.Code
	}
	if err := validateCategory(in); err != nil {
		return models.Category{}, err
	}

	current.Name = strings.TrimSpace(in.Name)
	current.Code = in.Code
	current.Description = in.Description
	current.Color = in.Color
	current.Icon = in.Icon

	updated, err := s.categories.Update(current)
	if err != nil {
		return models.Category{}, err
	}

	s.cache.Invalidate(cache.KeyAllCategories)
	s.publishCategories()
	return updated, nil
}

// DeactivateCategory soft-disables a category. Categories referenced by
// products are never hard-deleted, so product references stay valid.
func (s *Service) DeactivateCategory(ctx context.Context, id int) error {
	if err := s.categories.Deactivate(id); err != nil {
		return err
	}
	s.cache.Invalidate(cache.KeyAllCategories)
	s.publishCategories()
	return nil
}

// SeedCategories inserts the fixed category table into an empty store.
// Called once at startup.
func (s *Service) SeedCategories(ctx context.Context) error {
	existing, err := s.categories.GetAll()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	names := codegen.KnownCategories()
	sort.Strings(names)
	for _, name := range names {
		if _, err := s.categories.Create(models.Category{
			Name:     name,
			Code:     codegen.CategoryCode(name),
			IsActive: true,
		}); err != nil {
			return err
		}
	}

	s.cache.Invalidate(cache.KeyAllCategories)
	s.publishCategories()
	s.log.Info().Int("count", len(names)).Msg("seeded category table")
	return nil
}

// ensureCategory resolves a category by name, creating it on first use the
// way the original catalog grows: unknown names get a derived unique code.
func (s *Service) ensureCategory(name string) (models.Category, error) {
	c, err := s.categories.GetByName(name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repo.ErrCategoryNotFound) {
		return models.Category{}, err
	}

	created, err := s.categories.Create(models.Category{
		Name:     name,
		Code:     categoryCodeFor(name),
		IsActive: true,
	})
	if err != nil {
		return models.Category{}, err
	}
	s.cache.Invalidate(cache.KeyAllCategories)
	s.publishCategories()
	return created, nil
}

// categoryCodeFor prefers the fixed enumerated mapping and falls back to a
// token derived from the name, keeping codes unique across ad hoc
// categories instead of funneling them all into the generic code.
func categoryCodeFor(name string) string {
	if code := codegen.CategoryCode(name); code != codegen.FallbackCategoryCode {
		return code
	}
	return codegen.ShortCode(name)
}

// ProductsFeed exposes the push-updated "all products" snapshot.
func (s *Service) ProductsFeed() *watch.Feed[[]models.Product] { return s.productsFeed }

// CategoriesFeed exposes the push-updated "all categories" snapshot.
func (s *Service) CategoriesFeed() *watch.Feed[[]models.Category] { return s.categoriesFeed }
