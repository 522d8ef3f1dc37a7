package repository

import (
	"context"
	"fmt"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/slug"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxSlugAttempts bounds the insert retries when another writer takes the
// checked slug between the check and the insert.
const maxSlugAttempts = 10

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *CollectionRepository) WithTx(tx *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: tx}
}

// Create inserts c with a slug derived from base. Slugs are unique across all
// stores; the first free of base, base-1, base-2, ... is used and the insert is
// retried with the next candidate if the unique index rejects it.
func (r *CollectionRepository) Create(ctx context.Context, c *models.Collection, base string) error {
	return r.withUniqueSlug(ctx, c, base, func(tx *gorm.DB) error {
		return tx.Omit("Tag").Create(c).Error
	})
}

// Rename updates c, assigning a fresh slug from base. c itself is excluded from
// the collision check so keeping the same name keeps the same slug.
func (r *CollectionRepository) Rename(ctx context.Context, c *models.Collection, base string) error {
	return r.withUniqueSlug(ctx, c, base, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Save(c).Error
	})
}

func (r *CollectionRepository) withUniqueSlug(ctx context.Context, c *models.Collection, base string, write func(tx *gorm.DB) error) error {
	from := 0
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		candidate, n, err := slug.FirstFree(base, from, func(s string) (bool, error) {
			return r.slugTaken(ctx, s, c.ID)
		})
		if err != nil {
			return err
		}
		c.Slug = candidate

		err = r.db.WithContext(ctx).Transaction(write)
		if err == nil {
			return nil
		}
		if !isDuplicate(err) {
			return fmt.Errorf("failed to save collection: %w", err)
		}
		from = n + 1
	}
	return ErrSlugExhausted
}

func (r *CollectionRepository) slugTaken(ctx context.Context, s string, exclude uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Collection{}).Where("slug = ?", s)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CollectionRepository) Update(ctx context.Context, c *models.Collection) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

// Get loads a collection with its bound tag.
func (r *CollectionRepository) Get(ctx context.Context, id uint) (*models.Collection, error) {
	var c models.Collection
	if err := r.db.WithContext(ctx).Preload("Tag").First(&c, id).Error; err != nil {
		return nil, notFound(err, ErrCollectionNotFound)
	}
	return &c, nil
}

// List returns a page of collections in scope, newest first.
func (r *CollectionRepository) List(ctx context.Context, scope tenant.Scope, page, perPage int) ([]models.Collection, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Collection{}).Scopes(scope.Apply("store_id")).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := Page(page, perPage)
	var collections []models.Collection
	err := r.db.WithContext(ctx).
		Scopes(scope.Apply("store_id")).
		Preload("Tag").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&collections).Error
	return collections, total, err
}

// All returns every collection in scope.
func (r *CollectionRepository) All(ctx context.Context, scope tenant.Scope) ([]models.Collection, error) {
	var collections []models.Collection
	err := r.db.WithContext(ctx).Scopes(scope.Apply("store_id")).Preload("Tag").Order("id").Find(&collections).Error
	return collections, err
}

// ByTag finds the collection in scope bound to tagID.
func (r *CollectionRepository) ByTag(ctx context.Context, scope tenant.Scope, tagID uint) (*models.Collection, error) {
	return r.first(ctx, scope, "tag_id = ?", tagID)
}

// ByName finds the collection in scope with exactly this name.
func (r *CollectionRepository) ByName(ctx context.Context, scope tenant.Scope, name string) (*models.Collection, error) {
	return r.first(ctx, scope, "name = ?", name)
}

// ByShopifyID finds the collection in scope with the given remote id.
func (r *CollectionRepository) ByShopifyID(ctx context.Context, scope tenant.Scope, shopifyID string) (*models.Collection, error) {
	return r.first(ctx, scope, "shopify_id = ?", shopifyID)
}

func (r *CollectionRepository) first(ctx context.Context, scope tenant.Scope, query string, arg interface{}) (*models.Collection, error) {
	var c models.Collection
	err := r.db.WithContext(ctx).Scopes(scope.Apply("store_id")).Preload("Tag").Where(query, arg).Order("id").First(&c).Error
	if err != nil {
		return nil, notFound(err, ErrCollectionNotFound)
	}
	return &c, nil
}

// Unexported returns collections in scope that have no remote id yet, capped
// at limit when limit > 0.
func (r *CollectionRepository) Unexported(ctx context.Context, scope tenant.Scope, limit int) ([]models.Collection, error) {
	q := r.db.WithContext(ctx).Scopes(scope.Apply("store_id")).Preload("Tag").Where("shopify_id IS NULL").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var collections []models.Collection
	err := q.Find(&collections).Error
	return collections, err
}

// SetShopifyID records the remote id assigned on first export.
func (r *CollectionRepository) SetShopifyID(ctx context.Context, c *models.Collection, shopifyID string) error {
	if err := r.db.WithContext(ctx).Model(&models.Collection{}).Where("id = ?", c.ID).Update("shopify_id", shopifyID).Error; err != nil {
		return fmt.Errorf("failed to record shopify id: %w", err)
	}
	c.ShopifyID = &shopifyID
	return nil
}

// SetStaticProducts replaces the persisted membership of c.
func (r *CollectionRepository) SetStaticProducts(ctx context.Context, c *models.Collection, products []models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM collection_products WHERE collection_id = ?", c.ID).Error; err != nil {
			return err
		}
		for _, p := range products {
			if err := tx.Exec("INSERT INTO collection_products (collection_id, product_id) VALUES (?, ?)", c.ID, p.ID).Error; err != nil {
				return err
			}
		}
		c.Products = products
		return nil
	})
}

// StaticProducts returns the persisted membership rows of c.
func (r *CollectionRepository) StaticProducts(ctx context.Context, c *models.Collection) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Joins("JOIN collection_products ON collection_products.product_id = products.id").
		Where("collection_products.collection_id = ?", c.ID).
		Order("products.id").
		Find(&products).Error
	return products, err
}

// Members returns the products in c. Smart collections are evaluated live from
// the bound tag (filtered by scope); static collections return their rows.
func (r *CollectionRepository) Members(ctx context.Context, scope tenant.Scope, c *models.Collection) ([]models.Product, error) {
	if !c.IsSmart() {
		return r.StaticProducts(ctx, c)
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Joins("JOIN product_tags ON product_tags.product_id = products.id").
		Where("product_tags.tag_id = ?", *c.TagID).
		Scopes(scope.Apply("products.store_id")).
		Order("products.id").
		Find(&products).Error
	return products, err
}

// MemberCount is len(Members) without loading rows.
func (r *CollectionRepository) MemberCount(ctx context.Context, scope tenant.Scope, c *models.Collection) (int64, error) {
	var count int64
	var err error
	if c.IsSmart() {
		err = r.db.WithContext(ctx).
			Model(&models.Product{}).
			Joins("JOIN product_tags ON product_tags.product_id = products.id").
			Where("product_tags.tag_id = ?", *c.TagID).
			Scopes(scope.Apply("products.store_id")).
			Count(&count).Error
	} else {
		err = r.db.WithContext(ctx).Table("collection_products").Where("collection_id = ?", c.ID).Count(&count).Error
	}
	return count, err
}

// Delete removes the collection and its membership rows.
func (r *CollectionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM collection_products WHERE collection_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Collection{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCollectionNotFound
		}
		return nil
	})
}

// DeleteAll removes every collection in scope and returns how many went.
func (r *CollectionRepository) DeleteAll(ctx context.Context, scope tenant.Scope) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Collection{}).Scopes(scope.Apply("store_id")).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Exec("DELETE FROM collection_products WHERE collection_id IN ?", ids).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Collection{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}
