package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
	"github.com/Vistiqx/shopify-automation/internal/shopify"
	"gorm.io/gorm"
)

// newFakeLLM answers tag prompts with tags and category prompts with category.
func newFakeLLM(t *testing.T, tags, category string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			System string `json:"system"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		text := tags
		if strings.Contains(req.System, "collection this product belongs in") {
			text = category
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": text}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// fakeShopify is an in-memory Admin API.
type fakeShopify struct {
	mu          sync.Mutex
	nextID      int64
	products    map[int64]shopify.Product
	collections map[int64]shopify.CustomCollection
	collects    []shopify.Collect
	failTitles  map[string]bool
}

func newFakeShopify(t *testing.T) (*fakeShopify, *httptest.Server) {
	t.Helper()
	f := &fakeShopify{
		nextID:      1000,
		products:    map[int64]shopify.Product{},
		collections: map[int64]shopify.CustomCollection{},
		failTitles:  map[string]bool{},
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeShopify) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/admin/api/2024-01")
	switch {
	case r.Method == http.MethodGet && path == "/products.json":
		list := make([]shopify.Product, 0, len(f.products))
		for _, p := range f.products {
			list = append(list, p)
		}
		writeJSON(w, map[string]any{"products": list})

	case r.Method == http.MethodPost && path == "/products.json":
		var env struct{ Product shopify.Product }
		_ = json.NewDecoder(r.Body).Decode(&env)
		if f.failTitles[env.Product.Title] {
			http.Error(w, `{"errors":"rejected"}`, http.StatusUnprocessableEntity)
			return
		}
		f.nextID++
		env.Product.ID = f.nextID
		f.products[env.Product.ID] = env.Product
		writeJSON(w, map[string]any{"product": env.Product})

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/products/"):
		var id int64
		fmt.Sscanf(path, "/products/%d.json", &id)
		var env struct{ Product shopify.Product }
		_ = json.NewDecoder(r.Body).Decode(&env)
		env.Product.ID = id
		f.products[id] = env.Product
		writeJSON(w, map[string]any{"product": env.Product})

	case r.Method == http.MethodGet && path == "/custom_collections.json":
		list := make([]shopify.CustomCollection, 0, len(f.collections))
		for _, c := range f.collections {
			list = append(list, c)
		}
		writeJSON(w, map[string]any{"custom_collections": list})

	case r.Method == http.MethodPost && path == "/custom_collections.json":
		var env struct {
			CustomCollection shopify.CustomCollection `json:"custom_collection"`
		}
		_ = json.NewDecoder(r.Body).Decode(&env)
		if f.failTitles[env.CustomCollection.Title] {
			http.Error(w, `{"errors":"rejected"}`, http.StatusUnprocessableEntity)
			return
		}
		f.nextID++
		cc := env.CustomCollection
		cc.ID = f.nextID
		for _, col := range cc.Collects {
			f.nextID++
			f.collects = append(f.collects, shopify.Collect{ID: f.nextID, CollectionID: cc.ID, ProductID: col.ProductID})
		}
		f.collections[cc.ID] = cc
		writeJSON(w, map[string]any{"custom_collection": cc})

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/custom_collections/"):
		var id int64
		fmt.Sscanf(path, "/custom_collections/%d.json", &id)
		var env struct {
			CustomCollection shopify.CustomCollection `json:"custom_collection"`
		}
		_ = json.NewDecoder(r.Body).Decode(&env)
		env.CustomCollection.ID = id
		f.collections[id] = env.CustomCollection
		writeJSON(w, map[string]any{"custom_collection": env.CustomCollection})

	case r.Method == http.MethodPost && path == "/collects.json":
		var env struct{ Collect shopify.Collect }
		_ = json.NewDecoder(r.Body).Decode(&env)
		f.nextID++
		env.Collect.ID = f.nextID
		f.collects = append(f.collects, env.Collect)
		writeJSON(w, map[string]any{"collect": env.Collect})

	case r.Method == http.MethodGet && path == "/collects.json":
		var id int64
		fmt.Sscanf(r.URL.Query().Get("collection_id"), "%d", &id)
		var list []shopify.Collect
		for _, col := range f.collects {
			if col.CollectionID == id {
				list = append(list, col)
			}
		}
		writeJSON(w, map[string]any{"collects": list})

	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/collects/"):
		var id int64
		fmt.Sscanf(path, "/collects/%d.json", &id)
		kept := f.collects[:0]
		for _, col := range f.collects {
			if col.ID != id {
				kept = append(kept, col)
			}
		}
		f.collects = kept
		writeJSON(w, map[string]any{})

	default:
		http.NotFound(w, r)
	}
}

// members returns the remote product ids linked to collection id.
func (f *fakeShopify) members(id int64) []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for _, col := range f.collects {
		if col.CollectionID == id {
			ids = append(ids, col.ProductID)
		}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// newHolder builds a runtime whose outbound clients point at the given fake
// servers. An empty URL leaves that integration unconfigured.
func newHolder(t *testing.T, db *gorm.DB, llmURL, shopifyURL string, opts ...func(*config.Config)) *runtime.Holder {
	t.Helper()
	cfg := &config.Config{
		AnthropicAPIURL:   llmURL,
		AnthropicModel:    "test-model",
		AnthropicVersion:  "2023-06-01",
		AITimeout:         5 * time.Second,
		TagBatchSize:      50,
		ShopifyStoreURL:   shopifyURL,
		ShopifyAPIVersion: "2024-01",
		ShopifyTimeout:    5 * time.Second,
		SecretKey:         "test-secret",
		JWTAccessExpiry:   time.Hour,
	}
	if llmURL != "" {
		cfg.AnthropicAPIKey = "test-key"
	}
	if shopifyURL != "" {
		cfg.ShopifyAccessToken = "shpat_test"
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return runtime.NewHolder(cfg, repository.NewEnvVarRepository(db))
}
