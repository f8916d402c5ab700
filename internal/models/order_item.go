package models

// OrderItem is one line of an order. Lines are identified inside an
// order by the pair (ItemID, IsSpoiled); no two lines of the same order
// may share it. A line whose quantity reaches zero is removed, never
// kept.
type OrderItem struct {
	ItemID    uint     `json:"item_id"`
	Name      string   `json:"name"` // snapshot of the master item name
	Quantity  float64  `json:"quantity"`
	Unit      string   `json:"unit,omitempty"`
	Price     *float64 `json:"price,omitempty"` // per-line override of the master price
	IsSpoiled bool     `json:"is_spoiled,omitempty"`
	IsNew     bool     `json:"is_new,omitempty"` // unacknowledged addition after dispatch
}
