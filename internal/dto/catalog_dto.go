package dto

import (
	"time"

	"github.com/Vistiqx/shopify-automation/internal/models"
)

type ProductRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required,numeric"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=255"`
}

type ProductTagRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type AutoTagRequest struct {
	ProductIDs []uint `json:"product_ids"`
}

type CollectionRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	Description     string `json:"description"`
	MetaDescription string `json:"meta_description"`
	TagID           *uint  `json:"tag_id"`
	ProductIDs      []uint `json:"product_ids"`
}

type CreateCollectionsRequest struct {
	ExcludeImportedTags bool `json:"exclude_imported_tags"`
}

type EnvVarRequest struct {
	Key         string `json:"key" validate:"required,max=100"`
	Value       string `json:"value"`
	Description string `json:"description" validate:"max=255"`
}

type StoreRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	URL         string `json:"url" validate:"required,max=255"`
	AccessToken string `json:"access_token" validate:"max=255"`
}

type ProductResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	ImageURL    string    `json:"image_url"`
	ShopifyID   *string   `json:"shopify_id"`
	StoreID     *uint     `json:"store_id"`
	CreatedAt   time.Time `json:"created_at"`
	Tags        []string  `json:"tags"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		ImageURL:    p.ImageURL,
		ShopifyID:   p.ShopifyID,
		StoreID:     p.StoreID,
		CreatedAt:   p.CreatedAt,
		Tags:        p.TagNames(),
	}
}

func NewProductResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = NewProductResponse(&products[i])
	}
	return out
}

type CollectionResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	MetaDescription string    `json:"meta_description"`
	ShopifyID       *string   `json:"shopify_id"`
	StoreID         *uint     `json:"store_id"`
	Tag             *string   `json:"tag"`
	IsSmart         bool      `json:"is_smart"`
	ProductCount    int64     `json:"product_count"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewCollectionResponse(c *models.Collection, productCount int64) CollectionResponse {
	var tag *string
	if c.Tag != nil {
		name := c.Tag.Name
		tag = &name
	}
	return CollectionResponse{
		ID:              c.ID,
		Name:            c.Name,
		Slug:            c.Slug,
		Description:     c.Description,
		MetaDescription: c.MetaDescription,
		ShopifyID:       c.ShopifyID,
		StoreID:         c.StoreID,
		Tag:             tag,
		IsSmart:         c.IsSmart(),
		ProductCount:    productCount,
		CreatedAt:       c.CreatedAt,
	}
}
