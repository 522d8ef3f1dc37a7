package handlers

import (
	"os"

	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
	"github.com/Vistiqx/shopify-automation/internal/services"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type DebugHandler struct {
	stores  *services.StoreService
	envVars *services.EnvVarService
	holder  *runtime.Holder
}

func NewDebugHandler(stores *services.StoreService, envVars *services.EnvVarService, holder *runtime.Holder) *DebugHandler {
	return &DebugHandler{stores: stores, envVars: envVars, holder: holder}
}

type storeSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (h *DebugHandler) Stores(c *fiber.Ctx) error {
	stores, err := h.stores.List(c.UserContext())
	if err != nil {
		return failErr(c, err, "Failed to fetch stores")
	}
	summaries := make([]storeSummary, len(stores))
	for i, s := range stores {
		summaries[i] = storeSummary{ID: s.ID, Name: s.Name, URL: s.URL}
	}

	var current *storeSummary
	if s := tenant.GetStore(c); s != nil {
		current = &storeSummary{ID: s.ID, Name: s.Name, URL: s.URL}
	}
	return c.JSON(fiber.Map{
		"stores":        summaries,
		"current_store": current,
		"store_count":   len(stores),
	})
}

// EnvVars reports where the tagging key is visible. Values are masked.
func (h *DebugHandler) EnvVars(c *fiber.Ctx) error {
	vars, err := h.envVars.List(c.UserContext())
	if err != nil {
		return failErr(c, err, "Failed to fetch environment variables")
	}
	stored := make(map[string]string, len(vars))
	for _, v := range vars {
		stored[v.Key] = v.Value
	}

	rt := h.holder.Current()
	dbValue, inDB := stored[config.KeyAnthropicAPIKey]
	osValue, inOS := os.LookupEnv(config.KeyAnthropicAPIKey)

	masked := make(map[string]string, len(stored))
	for k, v := range stored {
		masked[k] = mask(v)
	}
	return c.JSON(fiber.Map{
		"anthropic_api_key_in_db":           inDB,
		"anthropic_api_key_in_os":           inOS,
		"anthropic_api_key_in_config":       rt.Config.AnthropicAPIKey != "",
		"anthropic_api_key_value_in_db":     mask(dbValue),
		"anthropic_api_key_value_in_os":     mask(osValue),
		"anthropic_api_key_value_in_config": mask(rt.Config.AnthropicAPIKey),
		"tagger_configured":                 rt.Tagger.IsConfigured(),
		"shopify_configured":                rt.Shopify.IsConfigured(),
		"env_vars":                          masked,
	})
}

// mask keeps the first five characters.
func mask(v string) string {
	if v == "" {
		return ""
	}
	if len(v) > 5 {
		v = v[:5]
	}
	return v + "..."
}
