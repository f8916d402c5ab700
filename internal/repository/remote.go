package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"procurement_tracker/internal/state"
)

// Remote bundles the per-entity repositories into the single snapshot
// read the sync engine consumes.
type Remote struct {
	db        *gorm.DB
	stores    StoreRepository
	suppliers SupplierRepository
	items     ItemRepository
	prices    PriceRepository
	orders    OrderRepository
}

func NewRemote(db *gorm.DB) *Remote {
	return &Remote{
		db:        db,
		stores:    NewStoreRepository(db),
		suppliers: NewSupplierRepository(db),
		items:     NewItemRepository(db),
		prices:    NewPriceRepository(db),
		orders:    NewOrderRepository(db),
	}
}

// Ping is the connectivity probe used before a sync run.
func (r *Remote) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Fetch reads all five remote collections.
func (r *Remote) Fetch(ctx context.Context) (state.RemoteSnapshot, error) {
	var snap state.RemoteSnapshot
	var err error

	if snap.Stores, err = r.stores.FetchAll(ctx); err != nil {
		return snap, fmt.Errorf("failed to fetch stores: %w", err)
	}
	if snap.Suppliers, err = r.suppliers.FetchAll(ctx); err != nil {
		return snap, fmt.Errorf("failed to fetch suppliers: %w", err)
	}
	if snap.Items, err = r.items.FetchAll(ctx); err != nil {
		return snap, fmt.Errorf("failed to fetch items: %w", err)
	}
	if snap.ItemPrices, err = r.prices.FetchAll(ctx); err != nil {
		return snap, fmt.Errorf("failed to fetch item prices: %w", err)
	}
	if snap.Orders, err = r.orders.FetchAll(ctx); err != nil {
		return snap, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return snap, nil
}
