package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NathanielMuller/ScanShelf/internal/models"
)

type PostgresMovementRepository struct {
	db *sql.DB
}

func NewPostgresMovementRepository(db *sql.DB) *PostgresMovementRepository {
	return &PostgresMovementRepository{db: db}
}

const defaultMovementLimit = 100

// Record inserts the journal row and writes the product's new stock in one
// transaction. The product row is locked for the duration, so concurrent
// records against the same product serialize while other products proceed.
func (r *PostgresMovementRepository) Record(entry MovementEntry) (models.Movement, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Movement{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	var (
		name  string
		stock int
	)
	err = tx.QueryRowContext(ctx, `SELECT name, stock FROM products WHERE id = $1 FOR UPDATE`, entry.ProductID).
		Scan(&name, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Movement{}, ErrProductNotFound
	}
	if err != nil {
		return models.Movement{}, err
	}

	newStock, err := applyMovement(stock, entry.Type, entry.Quantity)
	if err != nil {
		return models.Movement{}, err
	}

	movement := models.Movement{
		ID:            uuid.NewString(),
		ProductID:     entry.ProductID,
		ProductName:   name,
		Type:          entry.Type,
		Quantity:      entry.Quantity,
		PreviousStock: stock,
		NewStock:      newStock,
		Reason:        entry.Reason,
		Notes:         entry.Notes,
		UserID:        entry.UserID,
		CreatedAt:     time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO movements (id, product_id, type, quantity, previous_stock, new_stock, reason, notes, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		movement.ID, movement.ProductID, movement.Type, movement.Quantity, movement.PreviousStock,
		movement.NewStock, movement.Reason, movement.Notes, movement.UserID, movement.CreatedAt)
	if err != nil {
		return models.Movement{}, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE products SET stock = $1, updated_at = $2 WHERE id = $3`,
		newStock, movement.CreatedAt, entry.ProductID)
	if err != nil {
		return models.Movement{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Movement{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return movement, nil
}

func movementFilterConditions(mf MovementFilter) (string, []any) {
	query := ""
	argIdx := 1
	args := []any{}

	if mf.ProductID != nil {
		query += fmt.Sprintf(" AND m.product_id = $%d", argIdx)
		args = append(args, *mf.ProductID)
		argIdx++
	}
	if mf.Type != nil {
		query += fmt.Sprintf(" AND m.type = $%d", argIdx)
		args = append(args, *mf.Type)
		argIdx++
	}
	if mf.Reason != nil {
		query += fmt.Sprintf(" AND m.reason = $%d", argIdx)
		args = append(args, *mf.Reason)
		argIdx++
	}
	if mf.Since != nil {
		query += fmt.Sprintf(" AND m.created_at >= $%d", argIdx)
		args = append(args, *mf.Since)
		argIdx++
	}
	if mf.Until != nil {
		query += fmt.Sprintf(" AND m.created_at <= $%d", argIdx)
		args = append(args, *mf.Until)
	}

	return query, args
}

// Query returns movements newest first, joined with the product name.
func (r *PostgresMovementRepository) Query(mf MovementFilter) ([]models.Movement, int, error) {
	conditions, args := movementFilterConditions(mf)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var total int
	countQuery := "SELECT COUNT(*) FROM movements m WHERE 1=1" + conditions
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	query := `SELECT m.id, m.product_id, p.name, m.type, m.quantity, m.previous_stock, m.new_stock,
		m.reason, m.notes, m.user_id, m.created_at
		FROM movements m JOIN products p ON p.id = m.product_id
		WHERE 1=1` + conditions + " ORDER BY m.created_at DESC"

	argIdx := len(args) + 1
	limit := defaultMovementLimit
	if mf.Limit != nil && *mf.Limit > 0 {
		limit = min(*mf.Limit, defaultMovementLimit)
	}
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)
	argIdx++

	if mf.Offset != nil && *mf.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, *mf.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var movements []models.Movement
	for rows.Next() {
		var m models.Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.Type, &m.Quantity, &m.PreviousStock,
			&m.NewStock, &m.Reason, &m.Notes, &m.UserID, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		movements = append(movements, m)
	}
	return movements, total, rows.Err()
}

// Stats aggregates counts and quantity sums by type and by reason over the
// filtered movement set.
func (r *PostgresMovementRepository) Stats(mf MovementFilter) (MovementStats, error) {
	conditions, args := movementFilterConditions(mf)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	stats := MovementStats{
		ByType:   map[models.MovementType]TypeStats{},
		ByReason: map[models.MovementReason]TypeStats{},
	}

	query := `SELECT m.type, m.reason, COUNT(*), COALESCE(SUM(m.quantity), 0)
		FROM movements m WHERE 1=1` + conditions + " GROUP BY m.type, m.reason"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return MovementStats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t        models.MovementType
			reason   models.MovementReason
			count    int
			quantity int
		)
		if err := rows.Scan(&t, &reason, &count, &quantity); err != nil {
			return MovementStats{}, err
		}
		stats.Total += count

		byType := stats.ByType[t]
		byType.Count += count
		byType.Quantity += quantity
		stats.ByType[t] = byType

		byReason := stats.ByReason[reason]
		byReason.Count += count
		byReason.Quantity += quantity
		stats.ByReason[reason] = byReason
	}
	return stats, rows.Err()
}

func (r *PostgresMovementRepository) CountByProduct(productID int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movements WHERE product_id = $1`, productID).Scan(&count)
	return count, err
}

// Metrics summarizes the catalog and journal for the dashboard.
func (r *PostgresMovementRepository) Metrics() (Metrics, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var m Metrics
	err := r.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM products WHERE status <> $1),
		(SELECT COUNT(*) FROM movements),
		(SELECT COUNT(*) FROM products WHERE status <> $1 AND stock <= min_stock)`,
		models.StatusArchived).Scan(&m.TotalProducts, &m.TotalMovements, &m.LowStockCount)
	return m, err
}
