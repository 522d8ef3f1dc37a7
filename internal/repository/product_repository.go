package repository

import (
	"context"
	"fmt"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

// Get loads a product with its tags. Lookups by id are not store-filtered.
func (r *ProductRepository) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Preload("Tags").First(&p, id).Error; err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return &p, nil
}

// Delete removes the product and its tag and collection memberships.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_tags WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM collection_products WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
}

// List returns a page of products, newest first.
func (r *ProductRepository) List(ctx context.Context, scope tenant.Scope, page, perPage int) ([]models.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(scope.Apply("store_id")).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := Page(page, perPage)
	var products []models.Product
	err := r.db.WithContext(ctx).
		Scopes(scope.Apply("store_id")).
		Preload("Tags").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	return products, total, err
}

// All returns every product in scope.
func (r *ProductRepository) All(ctx context.Context, scope tenant.Scope) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Scopes(scope.Apply("store_id")).Preload("Tags").Order("id").Find(&products).Error
	return products, err
}

// FindByIDs returns the products in scope whose id is in ids.
func (r *ProductRepository) FindByIDs(ctx context.Context, scope tenant.Scope, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Scopes(scope.Apply("store_id")).
		Preload("Tags").
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error
	return products, err
}

// Untagged returns the products in scope that carry no tag.
func (r *ProductRepository) Untagged(ctx context.Context, scope tenant.Scope) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Scopes(scope.Apply("store_id")).
		Where("NOT EXISTS (SELECT 1 FROM product_tags WHERE product_tags.product_id = products.id)").
		Order("id").
		Find(&products).Error
	return products, err
}

// ByShopifyID finds the product in scope with the given remote id.
func (r *ProductRepository) ByShopifyID(ctx context.Context, scope tenant.Scope, shopifyID string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Scopes(scope.Apply("store_id")).Where("shopify_id = ?", shopifyID).First(&p).Error
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return &p, nil
}

// ByShopifyIDs maps remote ids to local products in scope.
func (r *ProductRepository) ByShopifyIDs(ctx context.Context, scope tenant.Scope, shopifyIDs []string) ([]models.Product, error) {
	if len(shopifyIDs) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).Scopes(scope.Apply("store_id")).Where("shopify_id IN ?", shopifyIDs).Order("id").Find(&products).Error
	return products, err
}

// SetShopifyID records the remote id assigned on first export.
func (r *ProductRepository) SetShopifyID(ctx context.Context, p *models.Product, shopifyID string) error {
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).Update("shopify_id", shopifyID).Error; err != nil {
		return fmt.Errorf("failed to record shopify id: %w", err)
	}
	p.ShopifyID = &shopifyID
	return nil
}

// AttachTag adds tag to p unless it is already attached. added is false for
// the no-op case.
func (r *ProductRepository) AttachTag(ctx context.Context, p *models.Product, tag *models.Tag) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("product_tags").
		Where("product_id = ? AND tag_id = ?", p.ID, tag.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := r.db.WithContext(ctx).Model(p).Association("Tags").Append(tag); err != nil {
		return false, err
	}
	return true, nil
}

// DetachTag removes tag from p. removed is false when it was not attached.
func (r *ProductRepository) DetachTag(ctx context.Context, p *models.Product, tag *models.Tag) (bool, error) {
	res := r.db.WithContext(ctx).Exec("DELETE FROM product_tags WHERE product_id = ? AND tag_id = ?", p.ID, tag.ID)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	kept := p.Tags[:0]
	for _, t := range p.Tags {
		if t.ID != tag.ID {
			kept = append(kept, t)
		}
	}
	p.Tags = kept
	return true, nil
}
