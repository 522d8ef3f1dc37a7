package services

import (
	"context"
	"testing"

	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStoreURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://Acme.myshopify.com/", "acme.myshopify.com"},
		{"http://acme.myshopify.com", "acme.myshopify.com"},
		{"  acme.myshopify.com//", "acme.myshopify.com"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStoreURL(tt.in))
		})
	}
}

func TestStoreNameFromURL(t *testing.T) {
	assert.Equal(t, "Acme Store", StoreNameFromURL("acme.myshopify.com"))
	assert.Equal(t, "Default Store", StoreNameFromURL(""))
}

func TestStoreService_EnsureDefault(t *testing.T) {
	ctx := context.Background()

	t.Run("from configured url", func(t *testing.T) {
		db := testutil.NewDB(t)
		svc := NewStoreService(repository.NewStoreRepository(db), nil)

		store, err := svc.EnsureDefault(ctx, "https://acme.myshopify.com/", "tok")
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.Equal(t, "Acme Store", store.Name)
		assert.Equal(t, "acme.myshopify.com", store.URL)
		assert.Equal(t, "tok", store.AccessToken)

		again, err := svc.EnsureDefault(ctx, "https://other.myshopify.com", "")
		require.NoError(t, err)
		assert.Nil(t, again, "existing stores are left alone")
	})

	t.Run("placeholder", func(t *testing.T) {
		db := testutil.NewDB(t)
		svc := NewStoreService(repository.NewStoreRepository(db), nil)

		store, err := svc.EnsureDefault(ctx, "", "")
		require.NoError(t, err)
		assert.Equal(t, "Default Store", store.Name)
		assert.Equal(t, "default-store.myshopify.com", store.URL)
	})
}

func TestStoreService_CreateNormalizesAndRejectsDuplicates(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewStoreService(repository.NewStoreRepository(db), nil)
	ctx := context.Background()

	s, err := svc.Create(ctx, " Main ", "https://Main.myshopify.com/", "")
	require.NoError(t, err)
	assert.Equal(t, "Main", s.Name)
	assert.Equal(t, "main.myshopify.com", s.URL)

	_, err = svc.Create(ctx, "Again", "main.myshopify.com", "")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	updated, err := svc.Update(ctx, s.ID, "Main 2", "main.myshopify.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Main 2", updated.Name)

	other, err := svc.Create(ctx, "Other", "other.myshopify.com", "")
	require.NoError(t, err)
	_, err = svc.Update(ctx, other.ID, "Other", "HTTPS://main.myshopify.com", "")
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
