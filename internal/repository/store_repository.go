package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procurement_tracker/internal/models"
)

type StoreRepository interface {
	FetchAll(ctx context.Context) ([]models.Store, error)
	Upsert(ctx context.Context, store *models.Store) error
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) FetchAll(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).Find(&stores).Error
	return stores, err
}

func (r *storeRepository) Upsert(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(store).Error
}
