package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/Vistiqx/shopify-automation/internal/session"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/Vistiqx/shopify-automation/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestHolder(t *testing.T, db *gorm.DB, mutate func(*config.Config)) *runtime.Holder {
	t.Helper()
	cfg := &config.Config{SecretKey: "test-secret", JWTAccessExpiry: time.Hour}
	mutate(cfg)
	return runtime.NewHolder(cfg, repository.NewEnvVarRepository(db))
}

func TestStoreContext(t *testing.T) {
	db := testutil.NewDB(t)
	sessions := session.NewManager("", time.Hour, false)
	stores := services.NewStoreService(repository.NewStoreRepository(db), sessions)

	app := fiber.New()
	app.Use(StoreContext(stores))
	app.Get("/scope", func(c *fiber.Ctx) error {
		return c.SendString(tenant.GetScope(c).String())
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/scope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tenant.AllStores().String(), readBody(t, resp))

	first := testutil.CreateStore(t, db, "First", "first.myshopify.com")
	testutil.CreateStore(t, db, "Second", "second.myshopify.com")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/scope", nil))
	require.NoError(t, err)
	assert.Equal(t, tenant.ForStore(first.ID).String(), readBody(t, resp))
}

func TestOperatorRequired_AdminToken(t *testing.T) {
	db := testutil.NewDB(t)
	holder := newTestHolder(t, db, func(cfg *config.Config) { cfg.AdminToken = "letmein" })

	app := fiber.New()
	app.Get("/debug", OperatorRequired(holder), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/debug", nil)
	req.Header.Set("X-Admin-Token", "letmein")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/debug", nil)
	req.Header.Set("X-Admin-Token", "nope")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOperatorRequired_NotConfigured(t *testing.T) {
	db := testutil.NewDB(t)
	holder := newTestHolder(t, db, func(*config.Config) {})

	app := fiber.New()
	app.Get("/debug", OperatorRequired(holder), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/debug", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOperatorRequired_JWT(t *testing.T) {
	db := testutil.NewDB(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	holder := newTestHolder(t, db, func(cfg *config.Config) { cfg.OperatorPasswordHash = string(hash) })

	login, err := services.NewAuthService(holder).Login(&dto.LoginRequest{Password: "hunter22"})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/debug", OperatorRequired(holder), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/debug", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/debug", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/debug", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	buf := new(strings.Builder)
	_, err := io.Copy(buf, resp.Body)
	require.NoError(t, err)
	return buf.String()
}

func TestRequestLogger_PassesErrorsThroughErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusTeapot).SendString(err.Error())
		},
	})
	app.Use(RequestLogger())
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "nope") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "nope", readBody(t, resp))
}
