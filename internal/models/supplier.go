package models

type Supplier struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	Name          string `json:"name" gorm:"not null"`
	Channel       string `json:"channel"` // messaging channel identifier (phone/group id)
	PaymentMethod string `json:"payment_method"`
}

type Store struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"not null"`
	Prefix  string `json:"prefix" gorm:"unique"` // order id prefix, e.g. "CV2"
	Channel string `json:"channel"`
}
