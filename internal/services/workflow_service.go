package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
	"github.com/Vistiqx/shopify-automation/internal/slug"
	"github.com/Vistiqx/shopify-automation/internal/tagging"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNoProductsSelected   = errors.New("no products selected for auto-tagging")
	ErrTaggingNotConfigured = errors.New("tagging API key not set")
	ErrNoProductsFound      = errors.New("no valid products found for auto-tagging")
	ErrInvalidPrice         = errors.New("invalid price")
)

// AutoTagResult summarizes one auto-tag run.
type AutoTagResult struct {
	Requested     int  `json:"requested"`
	Tagged        int  `json:"tagged"`
	TagsAdded     int  `json:"tags_added"`
	Failed        int  `json:"failed"`
	ExportSkipped bool `json:"export_skipped"`
	Exported      int  `json:"exported"`
	ExportErrors  int  `json:"export_errors"`
}

// CollectionsFromTagsResult summarizes one collection-generation run.
type CollectionsFromTagsResult struct {
	Created          int `json:"created"`
	Skipped          int `json:"skipped"`
	AnalyzedUntagged int `json:"analyzed_untagged"`
	CategoryCreated  int `json:"category_created"`
}

type WorkflowService struct {
	db          *gorm.DB
	products    *repository.ProductRepository
	tags        *repository.TagRepository
	collections *repository.CollectionRepository
	sync        *SyncService
	holder      *runtime.Holder
}

func NewWorkflowService(db *gorm.DB, products *repository.ProductRepository, tags *repository.TagRepository, collections *repository.CollectionRepository, sync *SyncService, holder *runtime.Holder) *WorkflowService {
	return &WorkflowService{
		db:          db,
		products:    products,
		tags:        tags,
		collections: collections,
		sync:        sync,
		holder:      holder,
	}
}

// AutoTagAndExport generates tags for the selected products in scope, stores
// them in one transaction, and then pushes every tagged product to Shopify
// when it is configured.
func (s *WorkflowService) AutoTagAndExport(ctx context.Context, scope tenant.Scope, productIDs []uint) (*AutoTagResult, error) {
	if len(productIDs) == 0 {
		return nil, ErrNoProductsSelected
	}
	rt := s.holder.Current()
	if !rt.Tagger.IsConfigured() {
		return nil, ErrTaggingNotConfigured
	}

	products, err := s.products.FindByIDs(ctx, scope, productIDs)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNoProductsFound
	}

	batch := make([]*models.Product, len(products))
	for i := range products {
		batch[i] = &products[i]
	}
	generated := rt.Tagger.BatchGenerateTags(ctx, batch, rt.Config.TagBatchSize)

	result := &AutoTagResult{Requested: len(products)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range generated {
			if len(g.Tags) == 0 || tagging.IsSentinel(g.Tags) {
				continue
			}
			added, err := s.applyTags(ctx, tx, scope, g.Product, g.Tags)
			if err != nil {
				result.Failed++
				slog.Error("failed to store generated tags", "action", "auto_tag", "product_id", g.Product.ID, "error", err)
				continue
			}
			if added > 0 {
				result.Tagged++
				result.TagsAdded += added
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit tags: %w", err)
	}

	if !rt.Shopify.IsConfigured() {
		result.ExportSkipped = true
		return result, nil
	}

	refreshed, err := s.products.FindByIDs(ctx, scope, productIDs)
	if err != nil {
		return nil, err
	}
	for i := range refreshed {
		if len(refreshed[i].Tags) == 0 {
			continue
		}
		if s.sync.ExportProduct(ctx, &refreshed[i]).OK() {
			result.Exported++
		} else {
			result.ExportErrors++
		}
	}
	return result, nil
}

// applyTags attaches names to p inside a savepoint of tx, so a failure undoes
// only this product's changes.
func (s *WorkflowService) applyTags(ctx context.Context, tx *gorm.DB, scope tenant.Scope, p *models.Product, names []string) (int, error) {
	added := 0
	err := tx.Transaction(func(itemTx *gorm.DB) error {
		tags := s.tags.WithTx(itemTx)
		products := s.products.WithTx(itemTx)
		for _, name := range names {
			tag, _, err := tags.ResolveOrCreate(ctx, scope, name)
			if err != nil {
				return err
			}
			ok, err := products.AttachTag(ctx, p, tag)
			if err != nil {
				return err
			}
			if ok {
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// CreateCollectionsFromTags turns qualifying tags into smart collections, then
// groups untagged products by an LLM-assigned category into static ones.
func (s *WorkflowService) CreateCollectionsFromTags(ctx context.Context, scope tenant.Scope, excludeImported bool) (*CollectionsFromTagsResult, error) {
	counts, err := s.tags.AllWithCounts(ctx, scope)
	if err != nil {
		return nil, err
	}

	result := &CollectionsFromTagsResult{}
	for i := range counts {
		tc := &counts[i]
		if reason := skipReason(tc, excludeImported); reason != "" {
			slog.Debug("skipping tag", "tag", tc.Name, "reason", reason)
			result.Skipped++
			continue
		}

		_, err := s.collections.ByTag(ctx, scope, tc.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrCollectionNotFound) {
			return nil, err
		}

		if err := s.createTagCollection(ctx, scope, tc); err != nil {
			return nil, err
		}
		result.Created++
	}

	untagged, err := s.products.Untagged(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(untagged) == 0 {
		return result, nil
	}
	result.AnalyzedUntagged = len(untagged)

	rt := s.holder.Current()
	batch := make([]*models.Product, len(untagged))
	for i := range untagged {
		batch[i] = &untagged[i]
	}
	analyzed := rt.Tagger.BatchAnalyzeProductsForCollections(ctx, batch, rt.Config.TagBatchSize)

	var order []string
	groups := make(map[string][]models.Product)
	for _, a := range analyzed {
		if a.Category == "" {
			continue
		}
		if _, ok := groups[a.Category]; !ok {
			order = append(order, a.Category)
		}
		groups[a.Category] = append(groups[a.Category], *a.Product)
	}

	for _, category := range order {
		members := groups[category]
		name := capitalize(category) + " Collection"
		_, err := s.collections.ByName(ctx, scope, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrCollectionNotFound) {
			return nil, err
		}

		c := &models.Collection{
			Name:        name,
			Description: fmt.Sprintf("Collection of %d products categorized as '%s'", len(members), category),
			StoreID:     scope.StoreIDPtr(),
		}
		if err := s.collections.Create(ctx, c, slug.Base(category)); err != nil {
			return nil, err
		}
		if err := s.collections.SetStaticProducts(ctx, c, members); err != nil {
			return nil, err
		}
		result.Created++
		result.CategoryCreated++
	}
	return result, nil
}

func skipReason(tc *models.TagWithCount, excludeImported bool) string {
	name := tc.Name
	lower := strings.ToLower(name)
	switch {
	case tc.ProductCount <= 1:
		return "fewer than two products"
	case len(strings.Fields(name)) < 2:
		return "single word"
	case strings.Contains(name, "_"):
		return "contains underscore"
	case excludeImported && (strings.Contains(lower, "imported") || strings.Contains(lower, "shopify")):
		return "imported tag"
	}
	return ""
}

func (s *WorkflowService) createTagCollection(ctx context.Context, scope tenant.Scope, tc *models.TagWithCount) error {
	members, err := s.tags.Products(ctx, tc.ID, 0)
	if err != nil {
		return err
	}
	title := titleCase(tc.Name)

	c := &models.Collection{
		Name:            fmt.Sprintf("%s Collection | Premium %s Products", title, title),
		MetaDescription: metaDescription(tc.Name, members),
		Description:     collectionHTML(tc.Name, title, tc.ProductCount),
		StoreID:         scope.StoreIDPtr(),
		TagID:           &tc.ID,
	}
	if err := s.collections.Create(ctx, c, slug.Base(tc.Name)); err != nil {
		return fmt.Errorf("failed to create collection for tag %q: %w", tc.Name, err)
	}
	slog.Info("collection created from tag", "tag", tc.Name, "collection_id", c.ID, "products", tc.ProductCount)
	return nil
}

func metaDescription(tag string, members []models.Product) string {
	n := min(5, len(members))
	titles := make([]string, n)
	for i := 0; i < n; i++ {
		titles[i] = members[i].Title
	}
	text := strings.Join(titles, ", ")
	if n < len(members) {
		text += fmt.Sprintf(", and %d more", len(members)-n)
	}
	return fmt.Sprintf("Explore our %s collection featuring %s. Find the perfect %s for your needs.", tag, text, tag)
}

func collectionHTML(tag, title string, count int64) string {
	return fmt.Sprintf(`<p>Welcome to our curated collection of %[1]s products. We've carefully selected %[3]d items that represent the best in quality and value.</p>
<p>Whether you're looking for %[1]s for personal use or as a gift, our collection offers a variety of options to suit your needs.</p>
<h2>Why Choose Our %[2]s Products?</h2>
<ul>
<li>Premium quality materials and craftsmanship</li>
<li>Carefully selected for durability and performance</li>
<li>Perfect for both everyday use and special occasions</li>
<li>Backed by our satisfaction guarantee</li>
</ul>
<p>Browse our complete %[1]s collection below and find the perfect item for you today!</p>`, tag, title, count)
}

// AddProduct creates a product in scope and, when tagging is configured,
// tags it straight away. The returned tags are the ones attached.
func (s *WorkflowService) AddProduct(ctx context.Context, scope tenant.Scope, title, description, price, imageURL string) (*models.Product, []string, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}

	p := &models.Product{
		Title:       strings.TrimSpace(title),
		Description: description,
		Price:       amount,
		ImageURL:    strings.TrimSpace(imageURL),
		StoreID:     scope.StoreIDPtr(),
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, nil, fmt.Errorf("failed to create product: %w", err)
	}

	tagger := s.holder.Current().Tagger
	if !tagger.IsConfigured() {
		return p, nil, nil
	}
	names := tagger.GenerateTags(ctx, p)
	if tagging.IsSentinel(names) {
		return p, nil, nil
	}
	if _, err := s.applyTags(ctx, s.db.WithContext(ctx), scope, p, names); err != nil {
		slog.Error("failed to tag new product", "product_id", p.ID, "error", err)
		return p, nil, nil
	}
	return p, p.TagNames(), nil
}

// titleCase upper-cases the first letter of every word and lower-cases the
// rest, where a word starts after any non-letter.
func titleCase(s string) string {
	out := []rune(s)
	prevLetter := false
	for i, r := range out {
		if prevLetter {
			out[i] = unicode.ToLower(r)
		} else {
			out[i] = unicode.ToUpper(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return string(out)
}

// capitalize upper-cases the first character and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
