package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procurement_tracker/internal/models"
)

type SupplierRepository interface {
	FetchAll(ctx context.Context) ([]models.Supplier, error)
	Upsert(ctx context.Context, supplier *models.Supplier) error
	Delete(ctx context.Context, id uint) error
}

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) FetchAll(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepository) Upsert(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(supplier).Error
}

func (r *supplierRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Supplier{}, id).Error
}
