package postgres

import (
	"context"
	"errors"
	"fmt"

	domainCatalog "stocktake-scan-service/internal/domain/catalog"
	"stocktake-scan-service/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
)

// CatalogRepository implements domain catalog.Repository
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new reference-data repository
func NewCatalogRepository(db *DB) domainCatalog.Repository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetMaterialByCode(ctx context.Context, code string) (*domainCatalog.Material, error) {
	var dbModel models.MaterialModel
	err := r.db.DB.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainCatalog.ErrMaterialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get material: %w", err)
	}

	return &domainCatalog.Material{
		ID:        dbModel.ID,
		Code:      dbModel.Code,
		Name:      dbModel.Name,
		Unit:      dbModel.Unit,
		Active:    dbModel.Active,
		CreatedAt: dbModel.CreatedAt,
		UpdatedAt: dbModel.UpdatedAt,
	}, nil
}

func (r *CatalogRepository) GetSupplierByCode(ctx context.Context, code string) (*domainCatalog.Supplier, error) {
	var dbModel models.SupplierModel
	err := r.db.DB.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainCatalog.ErrSupplierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}

	return &domainCatalog.Supplier{
		ID:        dbModel.ID,
		Code:      dbModel.Code,
		Name:      dbModel.Name,
		Active:    dbModel.Active,
		CreatedAt: dbModel.CreatedAt,
		UpdatedAt: dbModel.UpdatedAt,
	}, nil
}
