package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procurement_tracker/internal/models"
)

type PriceRepository interface {
	FetchAll(ctx context.Context) ([]models.ItemPrice, error)
	Upsert(ctx context.Context, price *models.ItemPrice) error
	Delete(ctx context.Context, id uint) error
}

type priceRepository struct {
	db *gorm.DB
}

func NewPriceRepository(db *gorm.DB) PriceRepository {
	return &priceRepository{db: db}
}

func (r *priceRepository) FetchAll(ctx context.Context) ([]models.ItemPrice, error) {
	var prices []models.ItemPrice
	err := r.db.WithContext(ctx).Find(&prices).Error
	return prices, err
}

func (r *priceRepository) Upsert(ctx context.Context, price *models.ItemPrice) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(price).Error
}

func (r *priceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ItemPrice{}, id).Error
}
