// Package shopify is a small client for the Shopify Admin REST API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Vistiqx/shopify-automation/internal/config"
)

var (
	ErrNotConfigured   = errors.New("shopify: store URL or access token not configured")
	ErrUnavailable     = errors.New("shopify: platform temporarily unavailable")
	ErrRequestFailed   = errors.New("shopify: request failed")
	ErrInvalidResponse = errors.New("shopify: invalid response")
)

const (
	maxResponseSize = 10 << 20
	pageLimit       = 250
)

type Client struct {
	storeURL    string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.ShopifyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		storeURL:    cfg.ShopifyStoreURL,
		accessToken: cfg.ShopifyAccessToken,
		apiVersion:  cfg.ShopifyAPIVersion,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// IsConfigured is true only when both the store URL and the access token are set.
func (c *Client) IsConfigured() bool {
	return c != nil && c.storeURL != "" && c.accessToken != ""
}

// baseURL is https://{store}/admin/api/{version}. A store URL that already
// carries a scheme is used as given.
func (c *Client) baseURL() string {
	host := c.storeURL
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/") + "/admin/api/" + c.apiVersion
}

// ListProducts returns every product, following pagination.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var all []Product
	err := c.paginate(ctx, "/products.json", func(body []byte) error {
		var env productsEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return err
		}
		all = append(all, env.Products...)
		return nil
	})
	return all, err
}

func (c *Client) CreateProduct(ctx context.Context, p Product) (*Product, error) {
	var out productEnvelope
	if err := c.do(ctx, http.MethodPost, "/products.json", productEnvelope{Product: p}, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p Product) (*Product, error) {
	var out productEnvelope
	if err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id)+".json", productEnvelope{Product: p}, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// ListCustomCollections returns every custom collection, following pagination.
func (c *Client) ListCustomCollections(ctx context.Context) ([]CustomCollection, error) {
	var all []CustomCollection
	err := c.paginate(ctx, "/custom_collections.json", func(body []byte) error {
		var env collectionsEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return err
		}
		all = append(all, env.CustomCollections...)
		return nil
	})
	return all, err
}

// ListCollects returns the product links of one custom collection.
func (c *Client) ListCollects(ctx context.Context, collectionID string) ([]Collect, error) {
	var all []Collect
	path := "/collects.json?collection_id=" + url.QueryEscape(collectionID)
	err := c.paginate(ctx, path, func(body []byte) error {
		var env collectsEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return err
		}
		all = append(all, env.Collects...)
		return nil
	})
	return all, err
}

func (c *Client) CreateCustomCollection(ctx context.Context, cc CustomCollection) (*CustomCollection, error) {
	var out collectionEnvelope
	if err := c.do(ctx, http.MethodPost, "/custom_collections.json", collectionEnvelope{CustomCollection: cc}, &out); err != nil {
		return nil, err
	}
	return &out.CustomCollection, nil
}

// UpdateCustomCollection updates the collection's fields and makes its remote
// membership equal the collects in cc: missing collects are added and collects
// for products no longer listed are deleted.
func (c *Client) UpdateCustomCollection(ctx context.Context, id string, cc CustomCollection) (*CustomCollection, error) {
	collects := cc.Collects
	cc.Collects = nil

	var out collectionEnvelope
	if err := c.do(ctx, http.MethodPut, "/custom_collections/"+url.PathEscape(id)+".json", collectionEnvelope{CustomCollection: cc}, &out); err != nil {
		return nil, err
	}

	existing, err := c.ListCollects(ctx, id)
	if err != nil {
		return nil, err
	}
	want := make(map[int64]bool, len(collects))
	for _, col := range collects {
		want[col.ProductID] = true
	}
	have := make(map[int64]bool, len(existing))
	for _, col := range existing {
		have[col.ProductID] = true
		if want[col.ProductID] {
			continue
		}
		if err := c.DeleteCollect(ctx, col.ID); err != nil {
			return nil, err
		}
	}

	collectionID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("shopify: invalid collection id %q: %w", id, err)
	}
	for _, col := range collects {
		if have[col.ProductID] {
			continue
		}
		have[col.ProductID] = true
		body := map[string]Collect{"collect": {CollectionID: collectionID, ProductID: col.ProductID}}
		if err := c.do(ctx, http.MethodPost, "/collects.json", body, nil); err != nil {
			return nil, err
		}
	}
	return &out.CustomCollection, nil
}

// DeleteCollect removes one product link from a custom collection.
func (c *Client) DeleteCollect(ctx context.Context, collectID int64) error {
	_, _, err := c.request(ctx, http.MethodDelete, c.baseURL()+"/collects/"+strconv.FormatInt(collectID, 10)+".json", nil)
	return err
}

func (c *Client) paginate(ctx context.Context, path string, page func(body []byte) error) error {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	next := c.baseURL() + path + sep + "limit=" + strconv.Itoa(pageLimit)
	for next != "" {
		body, header, err := c.request(ctx, http.MethodGet, next, nil)
		if err != nil {
			return err
		}
		if err := page(body); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		next = nextPageURL(header.Get("Link"))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("shopify: failed to encode request: %w", err)
	}
	body, _, err := c.request(ctx, method, c.baseURL()+path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func (c *Client) request(ctx context.Context, method, fullURL string, payload []byte) ([]byte, http.Header, error) {
	if !c.IsConfigured() {
		return nil, nil, ErrNotConfigured
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, nil, fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, truncate(string(body), 200))
	}
	return body, resp.Header, nil
}

// nextPageURL extracts the rel="next" target from a Link header.
func nextPageURL(link string) string {
	for _, part := range strings.Split(link, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		for _, attr := range segments[1:] {
			if strings.TrimSpace(attr) == `rel="next"` && strings.HasPrefix(target, "<") && strings.HasSuffix(target, ">") {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
