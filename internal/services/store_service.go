package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/session"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultStoreName = "Default Store"
	defaultStoreURL  = "default-store.myshopify.com"
)

type StoreService struct {
	stores   *repository.StoreRepository
	sessions *session.Manager
}

func NewStoreService(stores *repository.StoreRepository, sessions *session.Manager) *StoreService {
	return &StoreService{stores: stores, sessions: sessions}
}

// EnsureDefault creates the first store when none exist, named after the
// configured Shopify URL or a placeholder.
func (s *StoreService) EnsureDefault(ctx context.Context, shopifyURL, accessToken string) (*models.Store, error) {
	n, err := s.stores.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stores: %w", err)
	}
	if n > 0 {
		return nil, nil
	}

	store := &models.Store{Name: defaultStoreName, URL: defaultStoreURL}
	if url := NormalizeStoreURL(shopifyURL); url != "" {
		store.Name = StoreNameFromURL(url)
		store.URL = url
		store.AccessToken = accessToken
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to create default store: %w", err)
	}
	slog.Info("default store created", "store_id", store.ID, "url", store.URL)
	return store, nil
}

// Resolve returns the store recorded in the session, falling back to the
// first store. It returns nil, nil when there are no stores at all.
func (s *StoreService) Resolve(c *fiber.Ctx) (*models.Store, error) {
	ctx := c.UserContext()
	if id, ok := s.sessions.CurrentStoreID(c); ok {
		store, err := s.stores.Get(ctx, id)
		if err == nil {
			return store, nil
		}
		if !errors.Is(err, repository.ErrStoreNotFound) {
			return nil, err
		}
	}
	store, err := s.stores.First(ctx)
	if errors.Is(err, repository.ErrStoreNotFound) {
		return nil, nil
	}
	return store, err
}

// Select makes id the current store for this session. The store must exist.
func (s *StoreService) Select(c *fiber.Ctx, id uint) (*models.Store, error) {
	store, err := s.stores.Get(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SetCurrentStoreID(c, store.ID); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return store, nil
}

func (s *StoreService) List(ctx context.Context) ([]models.Store, error) {
	return s.stores.List(ctx)
}

func (s *StoreService) Create(ctx context.Context, name, url, accessToken string) (*models.Store, error) {
	store := &models.Store{Name: strings.TrimSpace(name), URL: NormalizeStoreURL(url), AccessToken: accessToken}
	if err := s.checkURLFree(ctx, store.URL, 0); err != nil {
		return nil, err
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// Update changes name and URL; an empty accessToken keeps the stored one.
func (s *StoreService) Update(ctx context.Context, id uint, name, url, accessToken string) (*models.Store, error) {
	store, err := s.stores.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	store.Name = strings.TrimSpace(name)
	store.URL = NormalizeStoreURL(url)
	if err := s.checkURLFree(ctx, store.URL, store.ID); err != nil {
		return nil, err
	}
	if accessToken != "" {
		store.AccessToken = accessToken
	}
	if err := s.stores.Update(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// checkURLFree returns ErrDuplicate when a store other than self already uses
// url. The unique index still catches concurrent writers.
func (s *StoreService) checkURLFree(ctx context.Context, url string, self uint) error {
	existing, err := s.stores.ByURL(ctx, url)
	if errors.Is(err, repository.ErrStoreNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return repository.ErrDuplicate
	}
	return nil
}

// Delete removes the store, leaving its rows unowned, and forgets it in this
// session if it was current.
func (s *StoreService) Delete(c *fiber.Ctx, id uint) error {
	if err := s.stores.Delete(c.UserContext(), id); err != nil {
		return err
	}
	if err := s.sessions.ClearCurrentStoreID(c, id); err != nil {
		slog.Warn("failed to clear current store from session", "store_id", id, "error", err)
	}
	return nil
}

// NormalizeStoreURL lower-cases and strips the scheme and trailing slash.
func NormalizeStoreURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimRight(u, "/")
}

// StoreNameFromURL derives "Acme Store" from "acme.myshopify.com".
func StoreNameFromURL(url string) string {
	label := strings.SplitN(url, ".", 2)[0]
	if label == "" {
		return defaultStoreName
	}
	return strings.ToUpper(label[:1]) + label[1:] + " Store"
}
