package runtime

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	values map[string]string
	err    error
}

func (s staticSource) Values(context.Context) (map[string]string, error) {
	return s.values, s.err
}

func TestHolder_Reload(t *testing.T) {
	base := &config.Config{ShopifyAPIVersion: "2024-01"}
	src := staticSource{values: map[string]string{
		config.KeyShopifyStoreURL:    "shop.myshopify.com/",
		config.KeyShopifyAccessToken: "tok",
		config.KeyAnthropicAPIKey:    "sk-test",
		"CUSTOM_FLAG":                "on",
	}}
	t.Cleanup(func() {
		for k := range src.values {
			_ = os.Unsetenv(k)
		}
	})

	h := NewHolder(base, src)
	before := h.Current()
	assert.False(t, before.Shopify.IsConfigured())
	assert.False(t, before.Tagger.IsConfigured())

	require.NoError(t, h.Reload(context.Background()))

	after := h.Current()
	assert.NotSame(t, before, after)
	assert.Equal(t, "shop.myshopify.com", after.Config.ShopifyStoreURL)
	assert.True(t, after.Shopify.IsConfigured())
	assert.True(t, after.Tagger.IsConfigured())
	assert.Equal(t, "on", os.Getenv("CUSTOM_FLAG"))

	assert.False(t, before.Shopify.IsConfigured(), "old snapshot is untouched")
	assert.Empty(t, base.ShopifyStoreURL, "base config is untouched")
}

func TestHolder_ReloadError(t *testing.T) {
	h := NewHolder(&config.Config{}, staticSource{err: errors.New("db down")})
	before := h.Current()

	assert.Error(t, h.Reload(context.Background()))
	assert.Same(t, before, h.Current())
}
