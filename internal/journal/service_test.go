package journal

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NathanielMuller/ScanShelf/internal/cache"
	"github.com/NathanielMuller/ScanShelf/internal/models"
	"github.com/NathanielMuller/ScanShelf/internal/repo"
)

func newTestService(t *testing.T) (*Service, *repo.MemoryStore) {
	t.Helper()
	store := repo.NewMemoryStore()
	svc := NewService(Config{
		Movements: store.Movements(),
		Products:  store.Products(),
		Cache:     cache.NewCoordinator(),
		Logger:    zerolog.Nop(),
	})
	return svc, store
}

func seedProduct(t *testing.T, store *repo.MemoryStore, stock int) models.Product {
	t.Helper()
	p, err := store.Products().Create(models.Product{
		Name:     "Wireless Mouse",
		SKU:      "ELE-LOG-001",
		Barcode:  "2001234567893",
		Category: "Electronics",
		Stock:    stock,
		MinStock: 2,
		Price:    29.90,
		Status:   models.StatusActive,
	})
	require.NoError(t, err)
	return p
}

func TestRecordInflow(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProduct(t, store, 10)

	m, err := svc.Record(context.Background(), repo.MovementEntry{
		ProductID: p.ID,
		Type:      models.MovementInflow,
		Quantity:  5,
		Reason:    models.ReasonRestock,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, m.PreviousStock)
	assert.Equal(t, 15, m.NewStock)
	assert.Equal(t, p.Name, m.ProductName)

	got, err := store.Products().GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Stock)
}

func TestRecordValidation(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProduct(t, store, 10)

	cases := []struct {
		name  string
		entry repo.MovementEntry
		field string
	}{
		{"unknown type", repo.MovementEntry{ProductID: p.ID, Type: "teleport", Quantity: 1, Reason: models.ReasonSale}, "type"},
		{"unknown reason", repo.MovementEntry{ProductID: p.ID, Type: models.MovementOutflow, Quantity: 1, Reason: "gift"}, "reason"},
		{"zero outflow", repo.MovementEntry{ProductID: p.ID, Type: models.MovementOutflow, Quantity: 0, Reason: models.ReasonSale}, "quantity"},
		{"negative inflow", repo.MovementEntry{ProductID: p.ID, Type: models.MovementInflow, Quantity: -3, Reason: models.ReasonRestock}, "quantity"},
		{"negative adjustment target", repo.MovementEntry{ProductID: p.ID, Type: models.MovementAdjustment, Quantity: -1, Reason: models.ReasonLoss}, "quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tc.entry)
			var verr *repo.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	got, err := store.Products().GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock, "rejected entries must not touch stock")
}

func TestRecordAdjustmentToZero(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProduct(t, store, 7)

	m, err := svc.Record(context.Background(), repo.MovementEntry{
		ProductID: p.ID,
		Type:      models.MovementAdjustment,
		Quantity:  0,
		Reason:    models.ReasonLoss,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, m.PreviousStock)
	assert.Equal(t, 0, m.NewStock)
}

func TestRecordInsufficientStock(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProduct(t, store, 3)

	_, err := svc.Record(context.Background(), repo.MovementEntry{
		ProductID: p.ID,
		Type:      models.MovementOutflow,
		Quantity:  5,
		Reason:    models.ReasonSale,
	})
	require.ErrorIs(t, err, repo.ErrInsufficientStock)
}

func TestRecentReflectsNewMovements(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProduct(t, store, 10)

	recent, err := svc.Recent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = svc.Record(context.Background(), repo.MovementEntry{
		ProductID: p.ID,
		Type:      models.MovementOutflow,
		Quantity:  2,
		Reason:    models.ReasonSale,
	})
	require.NoError(t, err)

	// Recording invalidates the cached page, so the next read sees it.
	recent, err = svc.Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, models.MovementOutflow, recent[0].Type)
}

func TestStatsCachedOnlyWhenUnfiltered(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProduct(t, store, 10)

	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), repo.MovementEntry{
			ProductID: p.ID,
			Type:      models.MovementInflow,
			Quantity:  1,
			Reason:    models.ReasonRestock,
		})
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.ByType[models.MovementInflow].Count)

	future := time.Now().Add(time.Hour)
	ranged, err := svc.Stats(context.Background(), &future, nil)
	require.NoError(t, err)
	assert.Zero(t, ranged.Total)
}

func TestMetrics(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProduct(t, store, 1)

	_, err := svc.Record(context.Background(), repo.MovementEntry{
		ProductID: p.ID,
		Type:      models.MovementInflow,
		Quantity:  4,
		Reason:    models.ReasonRestock,
	})
	require.NoError(t, err)

	metrics, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.TotalProducts)
	assert.Equal(t, 1, metrics.TotalMovements)
}

func TestFeedPublishesOnRecord(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProduct(t, store, 10)

	ch, cancel := svc.Feed().Subscribe()
	defer cancel()

	_, err := svc.Record(context.Background(), repo.MovementEntry{
		ProductID: p.ID,
		Type:      models.MovementInflow,
		Quantity:  2,
		Reason:    models.ReasonRestock,
	})
	require.NoError(t, err)

	select {
	case snapshot := <-ch:
		require.Len(t, snapshot, 1)
		assert.Equal(t, p.ID, snapshot[0].ProductID)
	case <-time.After(time.Second):
		t.Fatal("expected a movements snapshot")
	}
}
