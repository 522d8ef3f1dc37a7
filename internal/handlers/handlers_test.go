package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/Vistiqx/shopify-automation/internal/handlers"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/routes"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/Vistiqx/shopify-automation/internal/session"
	"github.com/Vistiqx/shopify-automation/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testApp struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()
	for _, k := range []string{config.KeyAnthropicAPIKey, config.KeyShopifyAccessToken, config.KeyShopifyStoreURL, config.KeySecretKey, config.KeyDatabaseURI} {
		t.Setenv(k, "")
	}

	db := testutil.NewDB(t)
	cfg := &config.Config{
		SecretKey:         "test-secret",
		DatabaseURI:       ":memory:",
		JWTAccessExpiry:   time.Hour,
		ShopifyAPIVersion: "2024-01",
		TagBatchSize:      50,
		AdminToken:        "letmein",
	}
	if mutate != nil {
		mutate(cfg)
	}

	productRepo := repository.NewProductRepository(db)
	tagRepo := repository.NewTagRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	envVarRepo := repository.NewEnvVarRepository(db)

	holder := runtime.NewHolder(cfg, envVarRepo)
	envVarService := services.NewEnvVarService(envVarRepo, holder)
	require.NoError(t, envVarService.SeedDefaults(context.Background(), cfg))

	stores := services.NewStoreService(storeRepo, session.NewManager("", time.Hour, false))
	syncService := services.NewSyncService(productRepo, tagRepo, collectionRepo, holder)
	workflow := services.NewWorkflowService(db, productRepo, tagRepo, collectionRepo, syncService, holder)

	app := fiber.New()
	routes.Setup(app, holder, stores, routes.Handlers{
		Auth:       handlers.NewAuthHandler(services.NewAuthService(holder)),
		Health:     handlers.NewHealthHandler(db, storeRepo),
		Dashboard:  handlers.NewDashboardHandler(productRepo, collectionRepo, stores),
		Product:    handlers.NewProductHandler(productRepo, tagRepo, workflow),
		Tag:        handlers.NewTagHandler(tagRepo),
		Collection: handlers.NewCollectionHandler(collectionRepo, services.NewCollectionService(collectionRepo, productRepo, tagRepo), workflow),
		EnvVar:     handlers.NewEnvVarHandler(envVarService),
		Store:      handlers.NewStoreHandler(stores),
		Shopify:    handlers.NewShopifyHandler(syncService, productRepo, collectionRepo),
		Debug:      handlers.NewDebugHandler(stores, envVarService, holder),
		Migrate:    handlers.NewMigrateHandler(db),
	})
	return &testApp{app: app, db: db}
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	switch {
	case len(raw) > 0 && raw[0] == '{':
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	case len(raw) > 0 && raw[0] == '[':
		var items []any
		require.NoError(t, json.Unmarshal(raw, &items), string(raw))
		out["items"] = items
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, nil)

	status, body := a.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["db"])
}

func TestProducts_CreateWithoutTaggingKey(t *testing.T) {
	a := newTestApp(t, nil)

	status, body := a.do(t, http.MethodPost, "/api/products", map[string]any{
		"title":       "Ceramic Mug",
		"description": "Hand glazed",
		"price":       "12.5",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "warning", body["level"])
	assert.Contains(t, body["message"], "skipping auto-tagging")

	data := body["data"].(map[string]any)
	assert.Equal(t, "12.50", data["price"])

	status, body = a.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
}

func TestProducts_Validation(t *testing.T) {
	a := newTestApp(t, nil)

	status, body := a.do(t, http.MethodPost, "/api/products", map[string]any{"price": "abc"})
	assert.Equal(t, http.StatusBadRequest, status)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "price")

	status, _ = a.do(t, http.MethodGet, "/api/products/0", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.do(t, http.MethodGet, "/api/products/999", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "product not found", body["message"])
}

func TestProducts_UpdateAndDelete(t *testing.T) {
	a := newTestApp(t, nil)
	p := testutil.CreateProduct(t, a.db, "Old Title", nil)
	path := fmt.Sprintf("/api/products/%d", p.ID)

	status, body := a.do(t, http.MethodPut, path, map[string]any{"title": "New Title", "price": "9.99"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "New Title", body["data"].(map[string]any)["title"])

	status, _ = a.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProducts_TagLifecycle(t *testing.T) {
	a := newTestApp(t, nil)
	p := testutil.CreateProduct(t, a.db, "Lamp", nil)
	path := fmt.Sprintf("/api/products/%d/tags", p.ID)

	status, body := a.do(t, http.MethodPost, path, map[string]any{"name": "lighting"})
	require.Equal(t, http.StatusCreated, status)
	tagID := uint(body["data"].(map[string]any)["id"].(float64))

	status, body = a.do(t, http.MethodPost, path, map[string]any{"name": "lighting"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "warning", body["level"])

	status, body = a.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", path, tagID), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body["level"])

	status, body = a.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", path, tagID), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "info", body["level"])
}

func TestProducts_AutoTag(t *testing.T) {
	a := newTestApp(t, nil)
	p := testutil.CreateProduct(t, a.db, "Lamp", nil)

	status, body := a.do(t, http.MethodPost, "/api/products/auto-tag", map[string]any{"product_ids": []uint{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No products selected for auto-tagging", body["message"])

	status, body = a.do(t, http.MethodPost, "/api/products/auto-tag", map[string]any{"product_ids": []uint{p.ID}})
	assert.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, "/env-vars", body["redirect"])
}

func TestCollections_CreateAndView(t *testing.T) {
	a := newTestApp(t, nil)
	mug := testutil.CreateProduct(t, a.db, "Mug", nil)
	testutil.CreateProduct(t, a.db, "Plate", nil)
	tag := testutil.CreateTag(t, a.db, "kitchen", nil, mug)

	status, body := a.do(t, http.MethodPost, "/api/collections", map[string]any{"name": "Kitchen", "tag_id": tag.ID})
	require.Equal(t, http.StatusCreated, status)
	created := body["data"].(map[string]any)
	assert.Equal(t, "kitchen", created["slug"])
	assert.Equal(t, true, created["is_smart"])

	status, body = a.do(t, http.MethodGet, fmt.Sprintf("/api/collections/%d/view", uint(created["id"].(float64))), nil)
	require.Equal(t, http.StatusOK, status)
	products := body["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "Mug", products[0].(map[string]any)["title"])

	status, body = a.do(t, http.MethodPost, "/api/collections/delete-all", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["deleted"])
}

func TestEnvVars_ProtectedDefaults(t *testing.T) {
	a := newTestApp(t, nil)
	admin := []string{"X-Admin-Token", "letmein"}

	secret, err := repository.NewEnvVarRepository(a.db).ByKey(context.Background(), config.KeySecretKey)
	require.NoError(t, err)

	status, body := a.do(t, http.MethodDelete, fmt.Sprintf("/api/env-vars/%d", secret.ID), nil, admin...)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "danger", body["level"])

	status, _ = a.do(t, http.MethodPut, fmt.Sprintf("/api/env-vars/%d", secret.ID), map[string]any{"key": "RENAMED", "value": "x"}, admin...)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = a.do(t, http.MethodPost, "/api/env-vars", map[string]any{"key": "CUSTOM_FLAG", "value": "1"}, admin...)
	assert.Equal(t, http.StatusCreated, status)
	status, _ = a.do(t, http.MethodPost, "/api/env-vars", map[string]any{"key": "CUSTOM_FLAG", "value": "2"}, admin...)
	assert.Equal(t, http.StatusConflict, status)
}

func TestEnvVars_OperatorOnlyAndMasked(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.OperatorPasswordHash = string(hash)
		cfg.AdminToken = ""
	})

	status, _ := a.do(t, http.MethodGet, "/api/env-vars", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	secret, err := repository.NewEnvVarRepository(a.db).ByKey(context.Background(), config.KeySecretKey)
	require.NoError(t, err)
	status, _ = a.do(t, http.MethodPut, fmt.Sprintf("/api/env-vars/%d", secret.ID), map[string]any{"key": config.KeySecretKey, "value": "stolen"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = a.do(t, http.MethodPost, "/api/env-vars", map[string]any{"key": "CUSTOM_FLAG", "value": "1"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := a.do(t, http.MethodPost, "/api/auth/login", map[string]any{"password": "hunter2"})
	require.Equal(t, http.StatusOK, status)
	token := body["access_token"].(string)

	status, body = a.do(t, http.MethodGet, "/api/env-vars", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	values := map[string]any{}
	for _, item := range body["items"].([]any) {
		row := item.(map[string]any)
		values[row["key"].(string)] = row["value"]
	}
	assert.Equal(t, "test-...", values[config.KeySecretKey])
}

func TestStores_CreateAndSelect(t *testing.T) {
	a := newTestApp(t, nil)

	status, body := a.do(t, http.MethodPost, "/api/stores/999/select", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Store not found.", body["message"])

	status, body = a.do(t, http.MethodPost, "/api/stores", map[string]any{"name": "Demo", "url": "https://demo.myshopify.com/"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "demo.myshopify.com", body["data"].(map[string]any)["url"])

	status, _ = a.do(t, http.MethodPost, "/api/stores", map[string]any{"name": "Again", "url": "demo.myshopify.com"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = a.do(t, http.MethodGet, "/api/stores", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["stores"].([]any), 1)
	assert.Equal(t, "Demo", body["current_store"].(map[string]any)["name"])
}

func TestShopify_NotConfigured(t *testing.T) {
	a := newTestApp(t, nil)

	status, body := a.do(t, http.MethodPost, "/api/shopify/import-products", nil)
	assert.Equal(t, http.StatusPreconditionFailed, status)
	assert.Contains(t, body["message"], "Shopify integration not configured")
}

func TestDebug_EnvVarsMasked(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) { cfg.AnthropicAPIKey = "sk-ant-abcdef" })

	status, _ := a.do(t, http.MethodGet, "/api/debug/env-vars", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := a.do(t, http.MethodGet, "/api/debug/env-vars", nil, "X-Admin-Token", "letmein")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["anthropic_api_key_in_db"])
	assert.Equal(t, "sk-an...", body["anthropic_api_key_value_in_db"])
	assert.Equal(t, true, body["tagger_configured"])
	assert.Equal(t, false, body["shopify_configured"])
	assert.Equal(t, "test-...", body["env_vars"].(map[string]any)[config.KeySecretKey])
}
