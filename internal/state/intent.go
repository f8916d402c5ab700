package state

import (
	"time"

	"procurement_tracker/internal/models"
)

// Intent is a request for one state transition. The reducer treats any
// intent it does not recognize, or whose payload fails validation, as a
// no-op and returns the input state unchanged.
type Intent interface {
	isIntent()
}

// CreateOrder creates a new order in DISPATCHING and allocates its
// human-readable id from the per-store daily counter in the same
// transition.
type CreateOrder struct {
	StoreID       uint
	SupplierID    uint
	SupplierName  string
	PaymentMethod string
	Items         []models.OrderItem
	Now           time.Time
}

// DeleteOrder removes an order outright.
type DeleteOrder struct {
	OrderID uint
}

// ReplaceOrder swaps in a full copy of an order, keyed by surrogate id.
// Used to apply a server-confirmed order into the tree.
type ReplaceOrder struct {
	Order models.Order
}

// SetStatus transitions an order through the status machine and applies
// the per-status side effects on the order's flags and timestamps.
type SetStatus struct {
	OrderID uint
	Status  models.OrderStatus
	Now     time.Time
}

// MoveItem moves one line, identified by (ItemID, IsSpoiled), from the
// source order to the destination order.
type MoveItem struct {
	SourceID    uint
	DestID      uint
	ItemID      uint
	IsSpoiled   bool
	ManagerMode bool
	Now         time.Time
}

// MergeOrders folds the source order's whole item list into the
// destination and deletes the source.
type MergeOrders struct {
	SourceID uint
	DestID   uint
	Now      time.Time
}

// SpoilItem splits Quantity off an order's clean line into its spoiled
// sibling line.
type SpoilItem struct {
	OrderID  uint
	ItemID   uint
	Quantity float64
	Now      time.Time
}

// UnspoilItem moves Quantity back from the spoiled line to the clean
// one and removes the spoiled line.
type UnspoilItem struct {
	OrderID  uint
	ItemID   uint
	Quantity float64
	Now      time.Time
}

// UpsertOrderItem sets an order line to the given values, appending it
// if absent. A non-positive quantity removes the line instead.
type UpsertOrderItem struct {
	OrderID uint
	Line    models.OrderItem
	Now     time.Time
}

// RemoveOrderItem deletes one line by identity key.
type RemoveOrderItem struct {
	OrderID   uint
	ItemID    uint
	IsSpoiled bool
	Now       time.Time
}

// AcknowledgeOrder clears the IsNew flag from every line and marks the
// order acknowledged.
type AcknowledgeOrder struct {
	OrderID uint
	Now     time.Time
}

// SetInvoiceAmount records the supplier invoice total on an order.
type SetInvoiceAmount struct {
	OrderID uint
	Amount  float64
	Now     time.Time
}

// SetPending toggles the per-order in-flight mutation guard.
type SetPending struct {
	OrderID uint
	Pending bool
}

// SetDragged records or clears the transient currently-dragged
// reference.
type SetDragged struct {
	Dragged *models.DraggedItem
}

// AdjustStock changes a tracked item's stock quantity by Delta.
type AdjustStock struct {
	ItemID uint
	Delta  float64
}

// UpdateSettings replaces the pass-through settings block.
type UpdateSettings struct {
	Settings models.Settings
}

// ReplaceCollections commits the result of a replica merge: all five
// entity collections are swapped in atomically or not at all.
type ReplaceCollections struct {
	Stores     []models.Store
	Suppliers  []models.Supplier
	Items      []models.Item
	ItemPrices []models.ItemPrice
	Orders     []models.Order
}

func (CreateOrder) isIntent()        {}
func (DeleteOrder) isIntent()        {}
func (ReplaceOrder) isIntent()       {}
func (SetStatus) isIntent()          {}
func (MoveItem) isIntent()           {}
func (MergeOrders) isIntent()        {}
func (SpoilItem) isIntent()          {}
func (UnspoilItem) isIntent()        {}
func (UpsertOrderItem) isIntent()    {}
func (RemoveOrderItem) isIntent()    {}
func (AcknowledgeOrder) isIntent()   {}
func (SetInvoiceAmount) isIntent()   {}
func (SetPending) isIntent()         {}
func (SetDragged) isIntent()         {}
func (AdjustStock) isIntent()        {}
func (UpdateSettings) isIntent()     {}
func (ReplaceCollections) isIntent() {}
