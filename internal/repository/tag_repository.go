package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *TagRepository) WithTx(tx *gorm.DB) *TagRepository {
	return &TagRepository{db: tx}
}

func (r *TagRepository) Get(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err, ErrTagNotFound)
	}
	return &tag, nil
}

// FindByName looks the name up in scope. Under the all-stores scope any store's
// tag with that name matches.
func (r *TagRepository) FindByName(ctx context.Context, scope tenant.Scope, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).
		Scopes(scope.Apply("store_id")).
		Where("name = ?", name).
		Order("id").
		First(&tag).Error
	if err != nil {
		return nil, notFound(err, ErrTagNotFound)
	}
	return &tag, nil
}

// ResolveOrCreate returns the scope's tag called name, creating it when absent.
// The insert runs in its own savepoint: if a concurrent writer wins the
// (store_id, name) unique index, only the savepoint is rolled back and the
// winner's row is returned.
func (r *TagRepository) ResolveOrCreate(ctx context.Context, scope tenant.Scope, name string) (*models.Tag, bool, error) {
	existing, err := r.FindByName(ctx, scope, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrTagNotFound) {
		return nil, false, err
	}

	tag := &models.Tag{Name: name, StoreID: scope.StoreIDPtr()}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(tag).Error
	})
	if err == nil {
		return tag, true, nil
	}
	if !isDuplicate(err) {
		return nil, false, fmt.Errorf("failed to create tag %q: %w", name, err)
	}

	winner, findErr := r.FindByName(ctx, scope, name)
	if findErr != nil {
		return nil, false, fmt.Errorf("tag %q conflicted but could not be re-read: %w", name, findErr)
	}
	return winner, false, nil
}

// ListWithCounts returns a page of tags in scope, ordered by name, with the
// number of products carrying each.
func (r *TagRepository) ListWithCounts(ctx context.Context, scope tenant.Scope, page, perPage int) ([]models.TagWithCount, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Tag{}).Scopes(scope.Apply("store_id")).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := Page(page, perPage)
	var rows []models.TagWithCount
	err := r.countsQuery(ctx, scope).Order("tags.name").Offset(offset).Limit(limit).Scan(&rows).Error
	return rows, total, err
}

// AllWithCounts returns every tag in scope with its product count.
func (r *TagRepository) AllWithCounts(ctx context.Context, scope tenant.Scope) ([]models.TagWithCount, error) {
	var rows []models.TagWithCount
	err := r.countsQuery(ctx, scope).Order("tags.id").Scan(&rows).Error
	return rows, err
}

func (r *TagRepository) countsQuery(ctx context.Context, scope tenant.Scope) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.id, tags.name, tags.store_id, COUNT(product_tags.product_id) AS product_count").
		Joins("LEFT JOIN product_tags ON product_tags.tag_id = tags.id").
		Scopes(scope.Apply("tags.store_id")).
		Group("tags.id, tags.name, tags.store_id")
}

// Products returns the products carrying the tag, oldest first, capped at limit
// when limit > 0.
func (r *TagRepository) Products(ctx context.Context, tagID uint, limit int) ([]models.Product, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN product_tags ON product_tags.product_id = products.id").
		Where("product_tags.tag_id = ?", tagID).
		Order("products.id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var products []models.Product
	err := q.Find(&products).Error
	return products, err
}

// Delete removes the tag, its product associations, and unbinds any
// collections that were derived from it.
func (r *TagRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Collection{}).Where("tag_id = ?", id).Update("tag_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTagNotFound
		}
		return nil
	})
}
