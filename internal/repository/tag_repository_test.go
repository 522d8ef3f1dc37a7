package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/Vistiqx/shopify-automation/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagRepository_ResolveOrCreate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	store := testutil.CreateStore(t, db, "Main", "main.myshopify.com")
	scope := tenant.ForStore(store.ID)

	tag, created, err := repo.ResolveOrCreate(ctx, scope, "summer")
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, tag.StoreID)
	assert.Equal(t, store.ID, *tag.StoreID)

	again, created, err := repo.ResolveOrCreate(ctx, scope, "summer")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tag.ID, again.ID)
}

func TestTagRepository_ResolveOrCreateConcurrent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	store := testutil.CreateStore(t, db, "Main", "main.myshopify.com")
	scope := tenant.ForStore(store.ID)

	var wg sync.WaitGroup
	ids := make([]uint, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag, _, err := repo.ResolveOrCreate(ctx, scope, "shared")
			if assert.NoError(t, err) {
				ids[i] = tag.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Where("name = ?", "shared").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTagRepository_SameNameDifferentStores(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	a := testutil.CreateStore(t, db, "A", "a.myshopify.com")
	b := testutil.CreateStore(t, db, "B", "b.myshopify.com")

	ta, _, err := repo.ResolveOrCreate(ctx, tenant.ForStore(a.ID), "sale")
	require.NoError(t, err)
	tb, created, err := repo.ResolveOrCreate(ctx, tenant.ForStore(b.ID), "sale")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, ta.ID, tb.ID)
}

func TestTagRepository_ListWithCounts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	p1 := testutil.CreateProduct(t, db, "p1", nil)
	p2 := testutil.CreateProduct(t, db, "p2", nil)
	testutil.CreateTag(t, db, "beta", nil, p1, p2)
	testutil.CreateTag(t, db, "alpha", nil, p1)
	testutil.CreateTag(t, db, "empty", nil)

	rows, total, err := repo.ListWithCounts(ctx, tenant.AllStores(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 3)

	assert.Equal(t, "alpha", rows[0].Name)
	assert.Equal(t, int64(1), rows[0].ProductCount)
	assert.Equal(t, "beta", rows[1].Name)
	assert.Equal(t, int64(2), rows[1].ProductCount)
	assert.Equal(t, "empty", rows[2].Name)
	assert.Zero(t, rows[2].ProductCount)
}

func TestTagRepository_DeleteUnbindsCollections(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	p := testutil.CreateProduct(t, db, "p", nil)
	tag := testutil.CreateTag(t, db, "gone", nil, p)
	c := &models.Collection{Name: "Gone", Slug: "gone", TagID: &tag.ID}
	require.NoError(t, db.Omit("Tag").Create(c).Error)

	require.NoError(t, repo.Delete(ctx, tag.ID))

	var reloaded models.Collection
	require.NoError(t, db.First(&reloaded, c.ID).Error)
	assert.Nil(t, reloaded.TagID)

	assert.ErrorIs(t, repo.Delete(ctx, tag.ID), ErrTagNotFound)
}

func TestTagRepository_Products(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	p1 := testutil.CreateProduct(t, db, "p1", nil)
	p2 := testutil.CreateProduct(t, db, "p2", nil)
	tag := testutil.CreateTag(t, db, "t", nil, p1, p2)

	products, err := repo.Products(ctx, tag.ID, 1)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, p1.ID, products[0].ID)
}
