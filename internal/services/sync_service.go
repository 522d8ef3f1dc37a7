package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
	"github.com/Vistiqx/shopify-automation/internal/shopify"
	"github.com/Vistiqx/shopify-automation/internal/slug"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/shopspring/decimal"
)

// SyncResult summarizes an import. Error is set when the import could not run
// at all; per-item failures are counted in Failed.
type SyncResult struct {
	Imported int    `json:"imported"`
	Updated  int    `json:"updated"`
	Failed   int    `json:"failed"`
	Error    string `json:"error,omitempty"`
}

// ExportResult is the outcome of exporting one entity.
type ExportResult struct {
	RemoteID string `json:"remote_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// OK reports whether the export succeeded.
func (r ExportResult) OK() bool {
	return r.Error == ""
}

// BulkExportResult counts a multi-collection export.
type BulkExportResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

const notConfiguredMessage = "Shopify integration not configured"

type SyncService struct {
	products    *repository.ProductRepository
	tags        *repository.TagRepository
	collections *repository.CollectionRepository
	holder      *runtime.Holder
}

func NewSyncService(products *repository.ProductRepository, tags *repository.TagRepository, collections *repository.CollectionRepository, holder *runtime.Holder) *SyncService {
	return &SyncService{products: products, tags: tags, collections: collections, holder: holder}
}

// IsConfigured reports whether the current snapshot can reach Shopify.
func (s *SyncService) IsConfigured() bool {
	return s.holder.Current().Shopify.IsConfigured()
}

// ImportProducts upserts every remote product into scope by remote id and
// attaches its remote tags.
func (s *SyncService) ImportProducts(ctx context.Context, scope tenant.Scope) SyncResult {
	client := s.holder.Current().Shopify
	if !client.IsConfigured() {
		return SyncResult{Error: notConfiguredMessage}
	}

	remote, err := client.ListProducts(ctx)
	if err != nil {
		slog.Error("shopify product import failed", "store", scope.String(), "error", err)
		return SyncResult{Error: err.Error()}
	}

	var result SyncResult
	for i := range remote {
		created, err := s.importProduct(ctx, scope, &remote[i])
		switch {
		case err != nil:
			result.Failed++
			slog.Error("failed to import product", "shopify_id", remote[i].ID, "error", err)
		case created:
			result.Imported++
		default:
			result.Updated++
		}
	}
	slog.Info("shopify products imported", "store", scope.String(), "imported", result.Imported, "updated", result.Updated, "failed", result.Failed)
	return result
}

func (s *SyncService) importProduct(ctx context.Context, scope tenant.Scope, rp *shopify.Product) (bool, error) {
	remoteID := rp.IDString()
	p, err := s.products.ByShopifyID(ctx, scope, remoteID)
	created := errors.Is(err, repository.ErrProductNotFound)
	if err != nil && !created {
		return false, err
	}
	if created {
		p = &models.Product{ShopifyID: &remoteID, StoreID: scope.StoreIDPtr()}
	}

	p.Title = rp.Title
	p.Description = rp.BodyHTML
	p.ImageURL = rp.ImageURL()
	if price, err := decimal.NewFromString(rp.Price()); err == nil {
		p.Price = price
	}

	if created {
		err = s.products.Create(ctx, p)
	} else {
		err = s.products.Update(ctx, p)
	}
	if err != nil {
		return false, err
	}

	for _, name := range rp.TagList() {
		tag, _, err := s.tags.ResolveOrCreate(ctx, scope, name)
		if err != nil {
			return created, fmt.Errorf("tag %q: %w", name, err)
		}
		if _, err := s.products.AttachTag(ctx, p, tag); err != nil {
			return created, fmt.Errorf("attach tag %q: %w", name, err)
		}
	}
	return created, nil
}

// ImportCollections upserts every remote custom collection into scope. The
// membership is rebuilt from collects, limited to products already imported.
func (s *SyncService) ImportCollections(ctx context.Context, scope tenant.Scope) SyncResult {
	client := s.holder.Current().Shopify
	if !client.IsConfigured() {
		return SyncResult{Error: notConfiguredMessage}
	}

	remote, err := client.ListCustomCollections(ctx)
	if err != nil {
		slog.Error("shopify collection import failed", "store", scope.String(), "error", err)
		return SyncResult{Error: err.Error()}
	}

	var result SyncResult
	for i := range remote {
		created, err := s.importCollection(ctx, scope, client, &remote[i])
		switch {
		case err != nil:
			result.Failed++
			slog.Error("failed to import collection", "shopify_id", remote[i].ID, "error", err)
		case created:
			result.Imported++
		default:
			result.Updated++
		}
	}
	slog.Info("shopify collections imported", "store", scope.String(), "imported", result.Imported, "updated", result.Updated, "failed", result.Failed)
	return result
}

func (s *SyncService) importCollection(ctx context.Context, scope tenant.Scope, client *shopify.Client, rc *shopify.CustomCollection) (bool, error) {
	remoteID := rc.IDString()
	c, err := s.collections.ByShopifyID(ctx, scope, remoteID)
	created := errors.Is(err, repository.ErrCollectionNotFound)
	if err != nil && !created {
		return false, err
	}

	if created {
		c = &models.Collection{
			Name:            rc.Title,
			Description:     rc.BodyHTML,
			MetaDescription: rc.MetafieldsGlobalDescription,
			ShopifyID:       &remoteID,
			StoreID:         scope.StoreIDPtr(),
		}
		base := rc.Handle
		if base == "" {
			base = slug.Base(rc.Title)
		}
		if err := s.collections.Create(ctx, c, base); err != nil {
			return false, err
		}
	} else {
		c.Name = rc.Title
		c.Description = rc.BodyHTML
		c.MetaDescription = rc.MetafieldsGlobalDescription
		if err := s.collections.Update(ctx, c); err != nil {
			return false, err
		}
	}

	if c.IsSmart() {
		return created, nil
	}
	collects, err := client.ListCollects(ctx, remoteID)
	if err != nil {
		return created, fmt.Errorf("list collects: %w", err)
	}
	ids := make([]string, 0, len(collects))
	for _, col := range collects {
		ids = append(ids, strconv.FormatInt(col.ProductID, 10))
	}
	members, err := s.products.ByShopifyIDs(ctx, scope, ids)
	if err != nil {
		return created, err
	}
	return created, s.collections.SetStaticProducts(ctx, c, members)
}

// ExportProduct creates or updates p remotely and records the remote id on
// first export.
func (s *SyncService) ExportProduct(ctx context.Context, p *models.Product) ExportResult {
	client := s.holder.Current().Shopify
	if !client.IsConfigured() {
		return ExportResult{Error: notConfiguredMessage}
	}

	payload := projectProduct(p)
	var (
		out *shopify.Product
		err error
	)
	if p.ShopifyID != nil && *p.ShopifyID != "" {
		out, err = client.UpdateProduct(ctx, *p.ShopifyID, payload)
	} else {
		out, err = client.CreateProduct(ctx, payload)
	}
	if err != nil {
		slog.Error("product export failed", "product_id", p.ID, "error", err)
		return ExportResult{Error: err.Error()}
	}

	remoteID := out.IDString()
	if p.ShopifyID == nil || *p.ShopifyID == "" {
		if err := s.products.SetShopifyID(ctx, p, remoteID); err != nil {
			return ExportResult{RemoteID: remoteID, Error: err.Error()}
		}
	}
	return ExportResult{RemoteID: remoteID}
}

// ExportCollection creates or updates c remotely. Smart collections are sent
// with the products currently carrying their tag; c itself is not modified
// beyond recording the remote id.
func (s *SyncService) ExportCollection(ctx context.Context, scope tenant.Scope, c *models.Collection) ExportResult {
	client := s.holder.Current().Shopify
	if !client.IsConfigured() {
		return ExportResult{Error: notConfiguredMessage}
	}

	members, err := s.collections.Members(ctx, scope, c)
	if err != nil {
		return ExportResult{Error: err.Error()}
	}
	payload := ProjectCollection(c, members)

	var out *shopify.CustomCollection
	if c.ShopifyID != nil && *c.ShopifyID != "" {
		out, err = client.UpdateCustomCollection(ctx, *c.ShopifyID, payload)
	} else {
		out, err = client.CreateCustomCollection(ctx, payload)
	}
	if err != nil {
		slog.Error("collection export failed", "collection_id", c.ID, "error", err)
		return ExportResult{Error: err.Error()}
	}

	remoteID := out.IDString()
	if c.ShopifyID == nil || *c.ShopifyID == "" {
		if err := s.collections.SetShopifyID(ctx, c, remoteID); err != nil {
			return ExportResult{RemoteID: remoteID, Error: err.Error()}
		}
	}
	return ExportResult{RemoteID: remoteID}
}

// ExportCollections exports the not-yet-exported collections in scope, at
// most limit of them when limit > 0. Failures do not stop the run.
func (s *SyncService) ExportCollections(ctx context.Context, scope tenant.Scope, limit int) (BulkExportResult, error) {
	pending, err := s.collections.Unexported(ctx, scope, limit)
	if err != nil {
		return BulkExportResult{}, err
	}

	result := BulkExportResult{Attempted: len(pending)}
	for i := range pending {
		if s.ExportCollection(ctx, scope, &pending[i]).OK() {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

// ProjectCollection builds the remote representation of c with the given
// members. Members without a remote id are left out of the collects.
func ProjectCollection(c *models.Collection, members []models.Product) shopify.CustomCollection {
	cc := shopify.CustomCollection{
		Title:                       c.Name,
		Handle:                      c.Slug,
		BodyHTML:                    c.Description,
		Published:                   true,
		MetafieldsGlobalDescription: c.MetaDescription,
	}
	for _, p := range members {
		if p.ShopifyID == nil {
			continue
		}
		id, err := strconv.ParseInt(*p.ShopifyID, 10, 64)
		if err != nil {
			continue
		}
		cc.Collects = append(cc.Collects, shopify.Collect{ProductID: id})
	}
	return cc
}

func projectProduct(p *models.Product) shopify.Product {
	out := shopify.Product{
		Title:    p.Title,
		BodyHTML: p.Description,
		Tags:     shopify.JoinTags(p.TagNames()),
		Variants: []shopify.Variant{{Price: p.Price.StringFixed(2)}},
	}
	if p.ImageURL != "" {
		out.Images = []shopify.Image{{Src: p.ImageURL}}
	}
	return out
}
