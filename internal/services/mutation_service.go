package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"procurement_tracker/internal/models"
	"procurement_tracker/internal/repository"
	"procurement_tracker/internal/state"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderPending     = errors.New("order has a mutation in flight")
	ErrSameOrder        = errors.New("source and destination are the same order")
	ErrStatusMismatch   = errors.New("orders are in different statuses")
	ErrItemNotFound     = errors.New("order item not found")
	ErrStoreNotFound    = errors.New("store not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrInvalidStatus    = errors.New("invalid order status")
)

// MoveItemCommand is the single explicit drag-drop command: move the
// line identified by (ItemID, IsSpoiled) from the source order to the
// destination order.
type MoveItemCommand struct {
	SourceID    uint `json:"source_id"`
	DestID      uint `json:"dest_id"`
	ItemID      uint `json:"item_id"`
	IsSpoiled   bool `json:"is_spoiled"`
	ManagerMode bool `json:"manager_mode"`
}

type MutationService interface {
	CreateOrder(ctx context.Context, storeID, supplierID uint, items []models.OrderItem, paymentMethod string) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID uint) error
	SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) error
	MoveItem(ctx context.Context, cmd MoveItemCommand) error
	MergeOrders(ctx context.Context, sourceID, destID uint) error
	SpoilItem(ctx context.Context, orderID, itemID uint, quantity float64) error
	UnspoilItem(ctx context.Context, orderID, itemID uint, quantity float64) error
	UpsertOrderItem(ctx context.Context, orderID uint, line models.OrderItem) error
	RemoveOrderItem(ctx context.Context, orderID, itemID uint, isSpoiled bool) error
	AcknowledgeOrder(ctx context.Context, orderID uint) error
	SetInvoiceAmount(ctx context.Context, orderID uint, amount float64) error
	StartDrag(ctx context.Context, ref models.DraggedItem) error
	EndDrag(ctx context.Context) error
}

type mutationService struct {
	store     *state.Store
	orders    repository.OrderRepository
	inventory InventoryService
	notifier  NotificationService
	now       func() time.Time
	// mu serializes pending-guard acquisition so two callers cannot
	// both observe an order as free and lock it twice.
	mu sync.Mutex
}

func NewMutationService(store *state.Store, orders repository.OrderRepository, inventory InventoryService, notifier NotificationService) MutationService {
	return &mutationService{
		store:     store,
		orders:    orders,
		inventory: inventory,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *mutationService) CreateOrder(ctx context.Context, storeID, supplierID uint, items []models.OrderItem, paymentMethod string) (*models.Order, error) {
	cur := s.store.State()
	if cur.StoreByID(storeID) == nil {
		return nil, ErrStoreNotFound
	}
	sup := cur.SupplierByID(supplierID)
	if sup == nil {
		return nil, ErrSupplierNotFound
	}
	for _, line := range items {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	// Creation is optimistic: the id and counter are allocated locally
	// before any remote confirmation, and the upload is best-effort.
	// A not-yet-uploaded order survives the next merge untouched.
	next, err := s.store.Dispatch(ctx, state.CreateOrder{
		StoreID:       storeID,
		SupplierID:    supplierID,
		SupplierName:  sup.Name,
		PaymentMethod: paymentMethod,
		Items:         items,
		Now:           s.now(),
	})
	if err != nil {
		return nil, err
	}
	created := next.Orders[len(next.Orders)-1].Clone()

	go func() {
		o := created.Clone()
		if err := s.orders.Upsert(context.Background(), &o); err != nil {
			log.Printf("Warning: failed to upload order %s: %v", created.OrderID, err)
		}
	}()
	return &created, nil
}

func (s *mutationService) DeleteOrder(ctx context.Context, orderID uint) error {
	return s.withOrderLock(ctx, []uint{orderID}, func(models.AppState) error {
		if err := s.orders.Delete(ctx, orderID); err != nil {
			return fmt.Errorf("failed to delete order remotely: %w", err)
		}
		_, err := s.store.Dispatch(ctx, state.DeleteOrder{OrderID: orderID})
		return err
	})
}

func (s *mutationService) SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}
	return s.withOrderLock(ctx, []uint{orderID}, func(cur models.AppState) error {
		if cur.OrderByID(orderID).Status == status {
			return nil
		}
		intent := state.SetStatus{OrderID: orderID, Status: status, Now: s.now()}
		preview := state.Reduce(cur, intent)
		updated := preview.OrderByID(orderID)

		if err := s.upsertRemote(ctx, updated); err != nil {
			return err
		}
		if _, err := s.store.Dispatch(ctx, intent); err != nil {
			return err
		}

		switch status {
		case models.StatusCompleted:
			s.restockTrackedVariants(cur, *updated)
		case models.StatusOnTheWay:
			s.sendOrderSheet(cur, *updated)
		}
		return nil
	})
}

// restockTrackedVariants applies the completion side effect: each
// non-spoiled line whose master item has a stock-tracked variant
// increases that variant's stock by the received quantity. The calls
// are fire-and-forget relative to the status transition.
func (s *mutationService) restockTrackedVariants(cur models.AppState, order models.Order) {
	for _, line := range order.Items {
		if line.IsSpoiled {
			continue
		}
		for _, item := range cur.Items {
			if item.ParentID != nil && *item.ParentID == line.ItemID && item.TrackStock {
				go func(variantID uint, qty float64) {
					if err := s.inventory.IncreaseStock(context.Background(), variantID, qty); err != nil {
						log.Printf("Warning: failed to restock item %d: %v", variantID, err)
					}
				}(item.ID, line.Quantity)
			}
		}
	}
}

// sendOrderSheet delivers the formatted order to the supplier's
// messaging channel when the order goes out.
func (s *mutationService) sendOrderSheet(cur models.AppState, order models.Order) {
	sup := cur.SupplierByID(order.SupplierID)
	if sup == nil || sup.Channel == "" {
		return
	}
	go func(channel string, o models.Order) {
		if err := s.notifier.SendOrderSheet(channel, o); err != nil {
			log.Printf("Warning: failed to send order %s to supplier: %v", o.OrderID, err)
		}
	}(sup.Channel, order)
}

func (s *mutationService) MoveItem(ctx context.Context, cmd MoveItemCommand) error {
	if cmd.SourceID == cmd.DestID {
		return ErrSameOrder
	}
	cur := s.store.State()
	src := cur.OrderByID(cmd.SourceID)
	dst := cur.OrderByID(cmd.DestID)
	if src == nil || dst == nil {
		return ErrOrderNotFound
	}
	if src.Status != dst.Status && !cmd.ManagerMode {
		return ErrStatusMismatch
	}
	if src.FindItem(cmd.ItemID, cmd.IsSpoiled) < 0 {
		return ErrItemNotFound
	}

	err := s.withOrderLock(ctx, []uint{cmd.SourceID, cmd.DestID}, func(cur models.AppState) error {
		intent := state.MoveItem{
			SourceID:    cmd.SourceID,
			DestID:      cmd.DestID,
			ItemID:      cmd.ItemID,
			IsSpoiled:   cmd.IsSpoiled,
			ManagerMode: cmd.ManagerMode,
			Now:         s.now(),
		}
		preview := state.Reduce(cur, intent)
		newDst := preview.OrderByID(cmd.DestID)
		newSrc := preview.OrderByID(cmd.SourceID)
		oldDst := cur.OrderByID(cmd.DestID)

		// Destination first: a failed destination write aborts before
		// the source loses the line.
		if err := s.upsertRemote(ctx, newDst); err != nil {
			return err
		}
		var srcErr error
		if newSrc == nil {
			srcErr = s.orders.Delete(ctx, cmd.SourceID)
		} else {
			srcErr = s.upsertRemote(ctx, newSrc)
		}
		if srcErr != nil {
			// Undo the destination so the line is not durably present
			// in both orders.
			if err := s.upsertRemote(ctx, oldDst); err != nil {
				log.Printf("Warning: failed to roll back destination order %d: %v", cmd.DestID, err)
			}
			return fmt.Errorf("failed to update source order remotely: %w", srcErr)
		}

		_, err := s.store.Dispatch(ctx, intent)
		return err
	})

	// A drag gesture always ends, even when the drop was rejected.
	if _, derr := s.store.Dispatch(ctx, state.SetDragged{}); derr != nil {
		log.Printf("Warning: failed to clear dragged reference: %v", derr)
	}
	return err
}

func (s *mutationService) MergeOrders(ctx context.Context, sourceID, destID uint) error {
	if sourceID == destID {
		return ErrSameOrder
	}
	cur := s.store.State()
	if cur.OrderByID(sourceID) == nil || cur.OrderByID(destID) == nil {
		return ErrOrderNotFound
	}
	return s.withOrderLock(ctx, []uint{sourceID, destID}, func(cur models.AppState) error {
		intent := state.MergeOrders{SourceID: sourceID, DestID: destID, Now: s.now()}
		preview := state.Reduce(cur, intent)
		newDst := preview.OrderByID(destID)
		oldDst := cur.OrderByID(destID)

		if err := s.upsertRemote(ctx, newDst); err != nil {
			return err
		}
		if err := s.orders.Delete(ctx, sourceID); err != nil {
			if rerr := s.upsertRemote(ctx, oldDst); rerr != nil {
				log.Printf("Warning: failed to roll back destination order %d: %v", destID, rerr)
			}
			return fmt.Errorf("failed to delete source order remotely: %w", err)
		}
		_, err := s.store.Dispatch(ctx, intent)
		return err
	})
}

func (s *mutationService) SpoilItem(ctx context.Context, orderID, itemID uint, quantity float64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.writeThrough(ctx, orderID, func(now time.Time) state.Intent {
		return state.SpoilItem{OrderID: orderID, ItemID: itemID, Quantity: quantity, Now: now}
	})
}

func (s *mutationService) UnspoilItem(ctx context.Context, orderID, itemID uint, quantity float64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.writeThrough(ctx, orderID, func(now time.Time) state.Intent {
		return state.UnspoilItem{OrderID: orderID, ItemID: itemID, Quantity: quantity, Now: now}
	})
}

func (s *mutationService) UpsertOrderItem(ctx context.Context, orderID uint, line models.OrderItem) error {
	return s.writeThrough(ctx, orderID, func(now time.Time) state.Intent {
		return state.UpsertOrderItem{OrderID: orderID, Line: line, Now: now}
	})
}

func (s *mutationService) RemoveOrderItem(ctx context.Context, orderID, itemID uint, isSpoiled bool) error {
	cur := s.store.State()
	if o := cur.OrderByID(orderID); o != nil && o.FindItem(itemID, isSpoiled) < 0 {
		return ErrItemNotFound
	}
	return s.writeThrough(ctx, orderID, func(now time.Time) state.Intent {
		return state.RemoveOrderItem{OrderID: orderID, ItemID: itemID, IsSpoiled: isSpoiled, Now: now}
	})
}

func (s *mutationService) AcknowledgeOrder(ctx context.Context, orderID uint) error {
	return s.writeThrough(ctx, orderID, func(now time.Time) state.Intent {
		return state.AcknowledgeOrder{OrderID: orderID, Now: now}
	})
}

func (s *mutationService) SetInvoiceAmount(ctx context.Context, orderID uint, amount float64) error {
	if amount < 0 {
		return ErrInvalidQuantity
	}
	return s.writeThrough(ctx, orderID, func(now time.Time) state.Intent {
		return state.SetInvoiceAmount{OrderID: orderID, Amount: amount, Now: now}
	})
}

func (s *mutationService) StartDrag(ctx context.Context, ref models.DraggedItem) error {
	_, err := s.store.Dispatch(ctx, state.SetDragged{Dragged: &ref})
	return err
}

func (s *mutationService) EndDrag(ctx context.Context) error {
	_, err := s.store.Dispatch(ctx, state.SetDragged{})
	return err
}

// writeThrough runs a single-order structural mutation with the
// write-through-with-rollback rule: the remote replace must succeed
// before the local transition is dispatched; on failure only the
// pending guard is rolled back and local state is untouched.
func (s *mutationService) writeThrough(ctx context.Context, orderID uint, build func(time.Time) state.Intent) error {
	return s.withOrderLock(ctx, []uint{orderID}, func(cur models.AppState) error {
		intent := build(s.now())
		preview := state.Reduce(cur, intent)
		updated := preview.OrderByID(orderID)

		var err error
		if updated == nil {
			// The mutation emptied an ON_THE_WAY order; it is gone.
			err = s.orders.Delete(ctx, orderID)
		} else {
			err = s.upsertRemote(ctx, updated)
		}
		if err != nil {
			return err
		}
		_, err = s.store.Dispatch(ctx, intent)
		return err
	})
}

// withOrderLock implements the per-order concurrency guard. Each order
// in ids is marked pending for the duration of fn; a mutation arriving
// while an order is pending is rejected, because the remote write is a
// full-order replace and two overlapping replaces would silently lose
// one writer's changes.
func (s *mutationService) withOrderLock(ctx context.Context, ids []uint, fn func(cur models.AppState) error) error {
	s.mu.Lock()
	cur := s.store.State()
	for _, id := range ids {
		o := cur.OrderByID(id)
		if o == nil {
			s.mu.Unlock()
			return ErrOrderNotFound
		}
		if o.Pending {
			s.mu.Unlock()
			return ErrOrderPending
		}
	}

	var locked models.AppState
	var err error
	for _, id := range ids {
		if locked, err = s.store.Dispatch(ctx, state.SetPending{OrderID: id, Pending: true}); err != nil {
			break
		}
	}
	s.mu.Unlock()
	defer func() {
		for _, id := range ids {
			if _, uerr := s.store.Dispatch(ctx, state.SetPending{OrderID: id, Pending: false}); uerr != nil {
				log.Printf("Warning: failed to clear pending flag on order %d: %v", id, uerr)
			}
		}
	}()
	if err != nil {
		return err
	}
	return fn(locked)
}

func (s *mutationService) upsertRemote(ctx context.Context, order *models.Order) error {
	o := order.Clone()
	o.Pending = false
	if err := s.orders.Upsert(ctx, &o); err != nil {
		return fmt.Errorf("failed to write order %d remotely: %w", order.ID, err)
	}
	return nil
}
