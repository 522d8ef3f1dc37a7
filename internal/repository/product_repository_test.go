package repository

import (
	"context"
	"testing"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/Vistiqx/shopify-automation/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := &models.Product{Title: "Linen Shirt", Price: decimal.RequireFromString("49.50")}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	found, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt", found.Title)
	assert.True(t, decimal.RequireFromString("49.50").Equal(found.Price))

	_, err = repo.Get(ctx, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductRepository_ListIsStoreScoped(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	a := testutil.CreateStore(t, db, "A", "a.myshopify.com")
	b := testutil.CreateStore(t, db, "B", "b.myshopify.com")
	testutil.CreateProduct(t, db, "a1", &a.ID)
	testutil.CreateProduct(t, db, "a2", &a.ID)
	testutil.CreateProduct(t, db, "b1", &b.ID)

	t.Run("store scope", func(t *testing.T) {
		products, total, err := repo.List(ctx, tenant.ForStore(a.ID), 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, products, 2)
		assert.Equal(t, "a2", products[0].Title)
	})

	t.Run("all stores", func(t *testing.T) {
		_, total, err := repo.List(ctx, tenant.AllStores(), 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("pagination", func(t *testing.T) {
		products, total, err := repo.List(ctx, tenant.AllStores(), 2, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, products, 1)
	})
}

func TestProductRepository_AttachDetachTag(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := testutil.CreateProduct(t, db, "Mug", nil)
	tag := testutil.CreateTag(t, db, "kitchen", nil)

	added, err := repo.AttachTag(ctx, p, tag)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AttachTag(ctx, p, tag)
	require.NoError(t, err)
	assert.False(t, added, "second attach is a no-op")

	found, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"kitchen"}, found.TagNames())

	removed, err := repo.DetachTag(ctx, found, tag)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, found.Tags)

	removed, err = repo.DetachTag(ctx, found, tag)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestProductRepository_Untagged(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	tagged := testutil.CreateProduct(t, db, "tagged", nil)
	testutil.CreateProduct(t, db, "bare", nil)
	testutil.CreateTag(t, db, "x", nil, tagged)

	products, err := repo.Untagged(ctx, tenant.AllStores())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "bare", products[0].Title)
}

func TestProductRepository_Delete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := testutil.CreateProduct(t, db, "gone", nil)
	testutil.CreateTag(t, db, "x", nil, p)

	require.NoError(t, repo.Delete(ctx, p.ID))

	var joins int64
	require.NoError(t, db.Table("product_tags").Where("product_id = ?", p.ID).Count(&joins).Error)
	assert.Zero(t, joins)

	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrProductNotFound)
}

func TestProductRepository_ShopifyIDs(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := testutil.CreateProduct(t, db, "remote", nil)
	require.NoError(t, repo.SetShopifyID(ctx, p, "gid-1"))
	require.NotNil(t, p.ShopifyID)

	found, err := repo.ByShopifyID(ctx, tenant.AllStores(), "gid-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	list, err := repo.ByShopifyIDs(ctx, tenant.AllStores(), []string{"gid-1", "gid-2"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
