package repository

import (
	"context"
	"fmt"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"gorm.io/gorm"
)

type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// Create inserts s. A URL that is already registered yields ErrDuplicate.
func (r *StoreRepository) Create(ctx context.Context, s *models.Store) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(s).Error
	})
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (r *StoreRepository) Get(ctx context.Context, id uint) (*models.Store, error) {
	var s models.Store
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err, ErrStoreNotFound)
	}
	return &s, nil
}

// First returns the lowest-id store, the fallback when nothing is selected.
func (r *StoreRepository) First(ctx context.Context) (*models.Store, error) {
	var s models.Store
	if err := r.db.WithContext(ctx).Order("id").First(&s).Error; err != nil {
		return nil, notFound(err, ErrStoreNotFound)
	}
	return &s, nil
}

func (r *StoreRepository) ByURL(ctx context.Context, url string) (*models.Store, error) {
	var s models.Store
	if err := r.db.WithContext(ctx).Where("url = ?", url).First(&s).Error; err != nil {
		return nil, notFound(err, ErrStoreNotFound)
	}
	return &s, nil
}

func (r *StoreRepository) List(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).Order("id").Find(&stores).Error
	return stores, err
}

func (r *StoreRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Store{}).Count(&n).Error
	return n, err
}

func (r *StoreRepository) Update(ctx context.Context, s *models.Store) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(s).Error
	})
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// Delete removes the store. Its products, tags and collections survive with
// no owner rather than being cascaded away.
func (r *StoreRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Product{}, &models.Tag{}, &models.Collection{}} {
			if err := tx.Model(model).Where("store_id = ?", id).Update("store_id", nil).Error; err != nil {
				return fmt.Errorf("failed to detach store rows: %w", err)
			}
		}
		res := tx.Delete(&models.Store{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStoreNotFound
		}
		return nil
	})
}
