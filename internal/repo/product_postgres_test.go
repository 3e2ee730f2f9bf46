package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueViolationMapping(t *testing.T) {
	skuErr := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "products_sku_key"})
	var conflict *ConflictError
	require.ErrorAs(t, uniqueViolation(skuErr, "ELE-SAM-001", "2000000000008"), &conflict)
	assert.Equal(t, "sku", conflict.Field)
	assert.Equal(t, "ELE-SAM-001", conflict.Value)

	barcodeErr := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "products_barcode_key"})
	require.ErrorAs(t, uniqueViolation(barcodeErr, "ELE-SAM-001", "2000000000008"), &conflict)
	assert.Equal(t, "barcode", conflict.Field)

	other := errors.New("connection reset")
	assert.Equal(t, other, uniqueViolation(other, "", ""))
}

func TestRestrictViolationMapping(t *testing.T) {
	fkErr := fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503", ConstraintName: "movements_product_id_fkey"})
	assert.ErrorIs(t, restrictViolation(fkErr), ErrProductHasMovements)

	other := errors.New("connection reset")
	assert.Equal(t, other, restrictViolation(other))
}
