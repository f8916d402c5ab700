package models

// Settings holds pass-through configuration kept inside the state tree
// so it survives restarts with everything else.
type Settings struct {
	WebhookURL     string `json:"webhook_url,omitempty"`
	ReportChannel  string `json:"report_channel,omitempty"`
	DefaultStoreID uint   `json:"default_store_id,omitempty"`
}

// DraggedItem is the transient currently-dragged reference. It exists
// only to drive drop-target highlighting and is cleared at the end of
// every drag gesture, successful or not.
type DraggedItem struct {
	OrderID   uint `json:"order_id"`
	ItemID    uint `json:"item_id"`
	IsSpoiled bool `json:"is_spoiled"`
}

// AppState is the single authoritative state tree. Every collection the
// application reads lives here; the whole tree is serialized to the
// snapshot store after every transition.
type AppState struct {
	Stores     []Store      `json:"stores"`
	Suppliers  []Supplier   `json:"suppliers"`
	Items      []Item       `json:"items"`
	ItemPrices []ItemPrice  `json:"item_prices"`
	Orders     []Order      `json:"orders"`
	// OrderIDCounters maps "<prefix>:<DDMM>" to the last sequence number
	// handed out for that store on that calendar day.
	OrderIDCounters map[string]int `json:"order_id_counters"`
	Settings        Settings       `json:"settings"`
	Dragged         *DraggedItem   `json:"dragged,omitempty"`
}

// DefaultState is the documented boot state used when no snapshot
// exists yet.
func DefaultState() AppState {
	return AppState{
		Stores:          []Store{},
		Suppliers:       []Supplier{},
		Items:           []Item{},
		ItemPrices:      []ItemPrice{},
		Orders:          []Order{},
		OrderIDCounters: map[string]int{},
	}
}

// Clone returns a deep copy of the tree. Reducer transitions operate on
// a clone so the previous state is never mutated.
func (s AppState) Clone() AppState {
	out := s
	out.Stores = make([]Store, len(s.Stores))
	copy(out.Stores, s.Stores)
	out.Suppliers = make([]Supplier, len(s.Suppliers))
	copy(out.Suppliers, s.Suppliers)
	out.Items = make([]Item, len(s.Items))
	copy(out.Items, s.Items)
	out.ItemPrices = make([]ItemPrice, len(s.ItemPrices))
	copy(out.ItemPrices, s.ItemPrices)
	out.Orders = make([]Order, len(s.Orders))
	for i, o := range s.Orders {
		out.Orders[i] = o.Clone()
	}
	out.OrderIDCounters = make(map[string]int, len(s.OrderIDCounters))
	for k, v := range s.OrderIDCounters {
		out.OrderIDCounters[k] = v
	}
	if s.Dragged != nil {
		d := *s.Dragged
		out.Dragged = &d
	}
	return out
}

// OrderByID returns a pointer into the tree's order slice, or nil.
func (s *AppState) OrderByID(id uint) *Order {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return &s.Orders[i]
		}
	}
	return nil
}

// StoreByID returns the store with the given id, or nil.
func (s *AppState) StoreByID(id uint) *Store {
	for i := range s.Stores {
		if s.Stores[i].ID == id {
			return &s.Stores[i]
		}
	}
	return nil
}

// SupplierByID returns the supplier with the given id, or nil.
func (s *AppState) SupplierByID(id uint) *Supplier {
	for i := range s.Suppliers {
		if s.Suppliers[i].ID == id {
			return &s.Suppliers[i]
		}
	}
	return nil
}

// ItemByID returns the master item with the given id, or nil.
func (s *AppState) ItemByID(id uint) *Item {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}
