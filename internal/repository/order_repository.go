package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procurement_tracker/internal/models"
)

// OrderRepository is the remote datastore collaborator for orders.
// Upsert is a full-order replace, which is why the mutation layer
// serializes writes per order.
type OrderRepository interface {
	FetchAll(ctx context.Context) ([]models.Order, error)
	Upsert(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) FetchAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Upsert(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(order).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, id).Error
}
