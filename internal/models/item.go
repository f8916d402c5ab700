package models

type Item struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	Name          string  `json:"name" gorm:"not null"`
	Unit          string  `json:"unit"`
	SupplierID    uint    `json:"supplier_id" gorm:"index"`
	ParentID      *uint   `json:"parent_id,omitempty"` // set on variants of another item
	IsVariant     bool    `json:"is_variant"`
	TrackStock    bool    `json:"track_stock"`
	StockQuantity float64 `json:"stock_quantity"`
}

// ItemPrice maps (item, supplier, unit) to a price. Among several
// unit-specific prices for the same item+supplier, exactly one should
// carry IsMaster.
type ItemPrice struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	ItemID     uint    `json:"item_id" gorm:"index"`
	SupplierID uint    `json:"supplier_id" gorm:"index"`
	Unit       string  `json:"unit"`
	Price      float64 `json:"price"`
	IsMaster   bool    `json:"is_master"`
}
