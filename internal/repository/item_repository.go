package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procurement_tracker/internal/models"
)

type ItemRepository interface {
	FetchAll(ctx context.Context) ([]models.Item, error)
	Upsert(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uint) error
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) FetchAll(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).Find(&items).Error
	return items, err
}

func (r *itemRepository) Upsert(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(item).Error
}

func (r *itemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Item{}, id).Error
}
