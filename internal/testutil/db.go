// Package testutil holds shared helpers for package tests.
package testutil

import (
	"testing"

	"github.com/Vistiqx/shopify-automation/internal/database"
	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateStore inserts a store.
func CreateStore(t *testing.T, db *gorm.DB, name, url string) *models.Store {
	t.Helper()
	s := &models.Store{Name: name, URL: url}
	require.NoError(t, db.Create(s).Error)
	return s
}

// CreateProduct inserts a product owned by storeID (nil for none).
func CreateProduct(t *testing.T, db *gorm.DB, title string, storeID *uint) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:       title,
		Description: title + " description",
		Price:       decimal.RequireFromString("19.99"),
		StoreID:     storeID,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateTag inserts a tag and attaches it to the given products.
func CreateTag(t *testing.T, db *gorm.DB, name string, storeID *uint, products ...*models.Product) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, StoreID: storeID}
	require.NoError(t, db.Create(tag).Error)
	for _, p := range products {
		require.NoError(t, db.Model(p).Association("Tags").Append(tag))
	}
	return tag
}

// UintPtr returns a pointer to v.
func UintPtr(v uint) *uint {
	return &v
}
