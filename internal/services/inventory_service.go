package services

import (
	"context"
	"fmt"

	"procurement_tracker/internal/repository"
	"procurement_tracker/internal/state"
)

// InventoryService is the stock side channel: one "increase stock by
// N" call per tracked variant, issued when an order completes.
type InventoryService interface {
	IncreaseStock(ctx context.Context, itemID uint, quantity float64) error
}

type inventoryService struct {
	store *state.Store
	items repository.ItemRepository
}

func NewInventoryService(store *state.Store, items repository.ItemRepository) InventoryService {
	return &inventoryService{store: store, items: items}
}

func (s *inventoryService) IncreaseStock(ctx context.Context, itemID uint, quantity float64) error {
	next, err := s.store.Dispatch(ctx, state.AdjustStock{ItemID: itemID, Delta: quantity})
	if err != nil {
		return err
	}
	item := next.ItemByID(itemID)
	if item == nil || !item.TrackStock {
		return fmt.Errorf("item %d does not track stock", itemID)
	}
	if err := s.items.Upsert(ctx, item); err != nil {
		return fmt.Errorf("failed to write stock for item %d: %w", itemID, err)
	}
	return nil
}
