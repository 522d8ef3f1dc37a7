package shopify

import (
	"strconv"
	"strings"
)

// Product is the subset of the Admin API product resource this app reads and
// writes.
type Product struct {
	ID       int64     `json:"id,omitempty"`
	Title    string    `json:"title"`
	BodyHTML string    `json:"body_html"`
	Tags     string    `json:"tags"`
	Variants []Variant `json:"variants,omitempty"`
	Images   []Image   `json:"images,omitempty"`
	Image    *Image    `json:"image,omitempty"`
}

type Variant struct {
	ID    int64  `json:"id,omitempty"`
	Price string `json:"price"`
}

type Image struct {
	Src string `json:"src"`
}

// IDString is the remote id as stored locally.
func (p *Product) IDString() string {
	return strconv.FormatInt(p.ID, 10)
}

// TagList splits the comma-separated tags field.
func (p *Product) TagList() []string {
	return splitTags(p.Tags)
}

// Price returns the first variant's price, "" when there is none.
func (p *Product) Price() string {
	if len(p.Variants) == 0 {
		return ""
	}
	return p.Variants[0].Price
}

// ImageURL returns the primary image source.
func (p *Product) ImageURL() string {
	if p.Image != nil && p.Image.Src != "" {
		return p.Image.Src
	}
	if len(p.Images) > 0 {
		return p.Images[0].Src
	}
	return ""
}

// CustomCollection is a manually curated collection.
type CustomCollection struct {
	ID                          int64     `json:"id,omitempty"`
	Title                       string    `json:"title"`
	Handle                      string    `json:"handle,omitempty"`
	BodyHTML                    string    `json:"body_html"`
	Published                   bool      `json:"published"`
	MetafieldsGlobalTitle       string    `json:"metafields_global_title_tag,omitempty"`
	MetafieldsGlobalDescription string    `json:"metafields_global_description_tag,omitempty"`
	Collects                    []Collect `json:"collects,omitempty"`
}

// IDString is the remote id as stored locally.
func (c *CustomCollection) IDString() string {
	return strconv.FormatInt(c.ID, 10)
}

// Collect links a product to a custom collection.
type Collect struct {
	ID           int64 `json:"id,omitempty"`
	CollectionID int64 `json:"collection_id,omitempty"`
	ProductID    int64 `json:"product_id"`
}

type productEnvelope struct {
	Product Product `json:"product"`
}

type productsEnvelope struct {
	Products []Product `json:"products"`
}

type collectionEnvelope struct {
	CustomCollection CustomCollection `json:"custom_collection"`
}

type collectionsEnvelope struct {
	CustomCollections []CustomCollection `json:"custom_collections"`
}

type collectsEnvelope struct {
	Collects []Collect `json:"collects"`
}

// JoinTags renders tag names in the Admin API's comma-separated form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
