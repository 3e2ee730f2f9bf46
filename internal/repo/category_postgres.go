package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/NathanielMuller/ScanShelf/internal/models"
)

type PostgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

func categoryConflict(err error, c models.Category) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "code") {
		return &ConflictError{Field: "code", Value: c.Code}
	}
	return &ConflictError{Field: "name", Value: c.Name}
}

func (r *PostgresCategoryRepository) Create(c models.Category) (models.Category, error) {
	query := `INSERT INTO categories (name, code, description, color, icon, is_active)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, c.Name, c.Code, c.Description, c.Color, c.Icon, c.IsActive).Scan(&c.ID)
	if err != nil {
		return models.Category{}, categoryConflict(err, c)
	}
	return c, nil
}

func (r *PostgresCategoryRepository) Update(c models.Category) (models.Category, error) {
	query := `UPDATE categories SET name = $1, code = $2, description = $3, color = $4, icon = $5, is_active = $6
		WHERE id = $7`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, c.Name, c.Code, c.Description, c.Color, c.Icon, c.IsActive, c.ID)
	if err != nil {
		return models.Category{}, categoryConflict(err, c)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return models.Category{}, ErrCategoryNotFound
	}
	return c, nil
}

func (r *PostgresCategoryRepository) Deactivate(id int) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE categories SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *PostgresCategoryRepository) GetByID(id int) (models.Category, error) {
	return r.getBy(`id = $1`, id)
}

func (r *PostgresCategoryRepository) GetByName(name string) (models.Category, error) {
	return r.getBy(`name = $1`, name)
}

func (r *PostgresCategoryRepository) getBy(condition string, value any) (models.Category, error) {
	query := `SELECT id, name, code, description, color, icon, is_active FROM categories WHERE ` + condition
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var c models.Category
	err := r.db.QueryRowContext(ctx, query, value).Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.Color, &c.Icon, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, ErrCategoryNotFound
	}
	return c, err
}

func (r *PostgresCategoryRepository) GetAll() ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, code, description, color, icon, is_active FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.Color, &c.Icon, &c.IsActive); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
