package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/NathanielMuller/ScanShelf/internal/models"
)

const queryTimeout = 3 * time.Second

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

const productColumns = `id, name, sku, barcode, category, stock, min_stock, price, description, brand, image_key, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Barcode, &p.Category, &p.Stock, &p.MinStock,
		&p.Price, &p.Description, &p.Brand, &p.ImageKey, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// uniqueViolation translates a 23505 constraint error into the typed
// conflict naming the offending field.
func uniqueViolation(err error, sku, barcode string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "barcode") {
		return &ConflictError{Field: "barcode", Value: barcode}
	}
	return &ConflictError{Field: "sku", Value: sku}
}

// restrictViolation translates a 23503 foreign key error on product deletion
// into ErrProductHasMovements.
func restrictViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrProductHasMovements
	}
	return err
}

func (r *PostgresProductRepository) Create(p models.Product) (models.Product, error) {
	query := `INSERT INTO products (name, sku, barcode, category, stock, min_stock, price, description, brand, image_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, p.Name, p.SKU, p.Barcode, p.Category, p.Stock, p.MinStock,
		p.Price, p.Description, p.Brand, p.ImageKey, p.Status, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return models.Product{}, uniqueViolation(err, p.SKU, p.Barcode)
	}
	return p, nil
}

// Update writes every field except stock, which only the movement path touches.
func (r *PostgresProductRepository) Update(p models.Product) (models.Product, error) {
	query := `UPDATE products SET name = $1, sku = $2, barcode = $3, category = $4, min_stock = $5,
		price = $6, description = $7, brand = $8, image_key = $9, status = $10, updated_at = $11
		WHERE id = $12 RETURNING stock`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, p.Name, p.SKU, p.Barcode, p.Category, p.MinStock,
		p.Price, p.Description, p.Brand, p.ImageKey, p.Status, p.UpdatedAt, p.ID).Scan(&p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, uniqueViolation(err, p.SKU, p.Barcode)
	}
	return p, nil
}

// Delete removes a product with no journal history. The movements foreign
// key is ON DELETE RESTRICT, so the database rejects the delete even when a
// movement commits concurrently; the restriction error maps to
// ErrProductHasMovements.
func (r *PostgresProductRepository) Delete(id int) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return restrictViolation(err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresProductRepository) GetByID(id int) (models.Product, error) {
	return r.getBy("id", id)
}

func (r *PostgresProductRepository) GetBySKU(sku string) (models.Product, error) {
	return r.getBy("sku", sku)
}

func (r *PostgresProductRepository) GetByBarcode(barcode string) (models.Product, error) {
	return r.getBy("barcode", barcode)
}

func (r *PostgresProductRepository) getBy(column string, value any) (models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s = $1`, productColumns, column)
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *PostgresProductRepository) GetAll() ([]models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY id`, productColumns)
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresProductRepository) UsedCodes() ([]string, []string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT sku, barcode FROM products`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var skus, barcodes []string
	for rows.Next() {
		var sku, barcode string
		if err := rows.Scan(&sku, &barcode); err != nil {
			return nil, nil, err
		}
		skus = append(skus, sku)
		barcodes = append(barcodes, barcode)
	}
	return skus, barcodes, rows.Err()
}

var productOrderColumns = map[string]string{
	OrderByName:      "name",
	OrderByStock:     "stock",
	OrderByPrice:     "price",
	OrderByCategory:  "category",
	OrderByCreatedAt: "created_at",
}

func productFilterConditions(pf ProductFilter) (string, []any, int) {
	query := ""
	argIdx := 1
	args := []any{}

	if pf.Query != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d OR barcode ILIKE $%d OR description ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx)
		args = append(args, "%"+pf.Query+"%")
		argIdx++
	}
	if pf.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, pf.Category)
		argIdx++
	}
	if pf.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, pf.Status)
		argIdx++
	}
	if pf.MinStock != nil {
		query += fmt.Sprintf(" AND stock >= $%d", argIdx)
		args = append(args, *pf.MinStock)
		argIdx++
	}
	if pf.MaxStock != nil {
		query += fmt.Sprintf(" AND stock <= $%d", argIdx)
		args = append(args, *pf.MaxStock)
		argIdx++
	}

	return query, args, argIdx
}

func (r *PostgresProductRepository) Search(pf ProductFilter) ([]models.Product, int, error) {
	conditions, args, argIdx := productFilterConditions(pf)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM products WHERE 1=1" + conditions
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	orderColumn, ok := productOrderColumns[pf.OrderBy]
	if !ok {
		orderColumn = "name"
	}
	direction := "ASC"
	if pf.Desc {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE 1=1%s ORDER BY %s %s, id ASC`,
		productColumns, conditions, orderColumn, direction)

	if pf.Limit != nil && *pf.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, *pf.Limit)
		argIdx++
	}
	if pf.Offset != nil && *pf.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, *pf.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, totalCount, rows.Err()
}
