package models

import (
	"time"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"unique;not null"`
	PINHash   string    `json:"-" gorm:"column:pin_hash"`
	Role      UserRole  `json:"role" gorm:"default:'staff'"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserRole string

const (
	Manager UserRole = "manager"
	Staff   UserRole = "staff"
)
