package models

import (
	"time"
)

type Order struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	OrderID        string      `json:"order_id" gorm:"index"` // human-readable, e.g. CV20108-01
	StoreID        uint        `json:"store_id" gorm:"not null"`
	SupplierID     uint        `json:"supplier_id" gorm:"not null"`
	SupplierName   string      `json:"supplier_name"` // denormalized at creation time
	Items          []OrderItem `json:"items" gorm:"serializer:json"`
	Status         OrderStatus `json:"status" gorm:"default:'DISPATCHING'"`
	PaymentMethod  string      `json:"payment_method"`
	IsSent         bool        `json:"is_sent"`
	IsReceived     bool        `json:"is_received"`
	IsAcknowledged bool        `json:"is_acknowledged"`
	InvoiceAmount  *float64    `json:"invoice_amount,omitempty"`
	Pending        bool        `json:"pending" gorm:"-"` // in-flight mutation guard, local only
	CreatedAt      time.Time   `json:"created_at"`
	ModifiedAt     time.Time   `json:"modified_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
}

type OrderStatus string

const (
	StatusDispatching OrderStatus = "DISPATCHING"
	StatusOnTheWay    OrderStatus = "ON_THE_WAY"
	StatusCompleted   OrderStatus = "COMPLETED"
)

// ValidStatus reports whether s is one of the three order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusDispatching, StatusOnTheWay, StatusCompleted:
		return true
	}
	return false
}

// FindItem returns the index of the line matching the identity key
// (itemID, isSpoiled), or -1.
func (o *Order) FindItem(itemID uint, isSpoiled bool) int {
	for i, it := range o.Items {
		if it.ItemID == itemID && it.IsSpoiled == isSpoiled {
			return i
		}
	}
	return -1
}

// TotalQuantity sums the quantity of every line carrying itemID,
// spoiled or not.
func (o *Order) TotalQuantity(itemID uint) float64 {
	var total float64
	for _, it := range o.Items {
		if it.ItemID == itemID {
			total += it.Quantity
		}
	}
	return total
}

// Clone returns a deep copy; the reducer never mutates orders in place.
func (o Order) Clone() Order {
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	for i := range items {
		if items[i].Price != nil {
			p := *items[i].Price
			items[i].Price = &p
		}
	}
	o.Items = items
	if o.InvoiceAmount != nil {
		v := *o.InvoiceAmount
		o.InvoiceAmount = &v
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		o.CompletedAt = &t
	}
	return o
}
