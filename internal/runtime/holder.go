// Package runtime holds the current configuration snapshot and the outbound
// clients built from it. A reload swaps in a new snapshot; holders of the old
// one keep using it unchanged.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/Vistiqx/shopify-automation/internal/shopify"
	"github.com/Vistiqx/shopify-automation/internal/tagging"
)

// Runtime is an immutable snapshot.
type Runtime struct {
	Config  *config.Config
	Tagger  *tagging.Service
	Shopify *shopify.Client
}

// ValueSource supplies the database-backed overrides.
type ValueSource interface {
	Values(ctx context.Context) (map[string]string, error)
}

type Holder struct {
	base    *config.Config
	source  ValueSource
	current atomic.Pointer[Runtime]
}

// NewHolder starts with a snapshot of base alone; call Reload to apply the
// stored overrides.
func NewHolder(base *config.Config, source ValueSource) *Holder {
	h := &Holder{base: base, source: source}
	h.current.Store(build(base))
	return h
}

// Current returns the active snapshot.
func (h *Holder) Current() *Runtime {
	return h.current.Load()
}

// Reload reads every stored override, exports it to the process environment,
// and swaps in a freshly built snapshot.
func (h *Holder) Reload(ctx context.Context) error {
	values, err := h.source.Values(ctx)
	if err != nil {
		return fmt.Errorf("failed to load env vars: %w", err)
	}
	for key, value := range values {
		if err := os.Setenv(key, value); err != nil {
			slog.Warn("could not export env var", "key", key, "error", err)
		}
	}

	h.current.Store(build(h.base.WithOverrides(values)))
	slog.Info("runtime configuration reloaded", "keys", len(values))
	return nil
}

func build(cfg *config.Config) *Runtime {
	return &Runtime{
		Config:  cfg,
		Tagger:  tagging.NewService(cfg),
		Shopify: shopify.NewClient(cfg),
	}
}
