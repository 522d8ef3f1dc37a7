package tagging

import (
	"context"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"golang.org/x/sync/errgroup"
)

// TagResult pairs a product with the tags generated for it.
type TagResult struct {
	Product *models.Product
	Tags    []string
}

// CategoryResult pairs a product with its collection category ("" for none).
type CategoryResult struct {
	Product  *models.Product
	Category string
}

// BatchGenerateTags tags every product. Products are processed batchSize at a
// time: calls within a batch run concurrently and the next batch starts only
// once the previous one has finished. Results are in input order.
func (s *Service) BatchGenerateTags(ctx context.Context, products []*models.Product, batchSize int) []TagResult {
	results := make([]TagResult, len(products))
	forEachBatch(ctx, len(products), batchSize, func(i int) {
		results[i] = TagResult{Product: products[i], Tags: s.GenerateTags(ctx, products[i])}
	})
	return results
}

// BatchAnalyzeProductsForCollections classifies every product with the same
// batching as BatchGenerateTags.
func (s *Service) BatchAnalyzeProductsForCollections(ctx context.Context, products []*models.Product, batchSize int) []CategoryResult {
	results := make([]CategoryResult, len(products))
	forEachBatch(ctx, len(products), batchSize, func(i int) {
		results[i] = CategoryResult{Product: products[i], Category: s.ClassifyProduct(ctx, products[i])}
	})
	return results
}

// forEachBatch calls fn for every index in [0, n). fn must not fail; item
// errors are folded into its result.
func forEachBatch(ctx context.Context, n, batchSize int, fn func(i int)) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)

		g, _ := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				fn(i)
				return nil
			})
		}
		_ = g.Wait()
	}
}
