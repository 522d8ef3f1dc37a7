package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
)

var ErrProtectedEnvVar = errors.New("default environment variables cannot be deleted")

// EnvVarService manages the database-backed settings. Every change reloads
// the runtime snapshot so new requests see it immediately.
type EnvVarService struct {
	repo   *repository.EnvVarRepository
	holder *runtime.Holder
}

func NewEnvVarService(repo *repository.EnvVarRepository, holder *runtime.Holder) *EnvVarService {
	return &EnvVarService{repo: repo, holder: holder}
}

// SeedDefaults makes sure every default key exists, then reloads.
func (s *EnvVarService) SeedDefaults(ctx context.Context, cfg *config.Config) error {
	for key, value := range config.DefaultEnvVars(cfg) {
		if err := s.repo.EnsureDefault(ctx, key, value, "Default "+key); err != nil {
			return fmt.Errorf("failed to seed %s: %w", key, err)
		}
	}
	return s.holder.Reload(ctx)
}

func (s *EnvVarService) List(ctx context.Context) ([]models.EnvVar, error) {
	return s.repo.List(ctx)
}

func (s *EnvVarService) Create(ctx context.Context, key, value, description string) (*models.EnvVar, error) {
	v := &models.EnvVar{Key: strings.TrimSpace(key), Value: value, Description: description}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	s.reload(ctx)
	return v, nil
}

func (s *EnvVarService) Update(ctx context.Context, id uint, key, value, description string) (*models.EnvVar, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	key = strings.TrimSpace(key)
	if config.IsDefaultKey(v.Key) && key != v.Key {
		return nil, ErrProtectedEnvVar
	}
	v.Key = key
	v.Value = value
	v.Description = description
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	s.reload(ctx)
	return v, nil
}

func (s *EnvVarService) Delete(ctx context.Context, id uint) error {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if config.IsDefaultKey(v.Key) {
		return ErrProtectedEnvVar
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

func (s *EnvVarService) reload(ctx context.Context) {
	if err := s.holder.Reload(ctx); err != nil {
		slog.Error("runtime reload failed", "action", "env_var_reload", "error", err)
	}
}
