package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item owned by a store. StoreID is nil for rows created
// while no store existed.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	ImageURL    string          `gorm:"size:512" json:"image_url"`
	ShopifyID   *string         `gorm:"size:64;index" json:"shopify_id"`
	StoreID     *uint           `gorm:"index" json:"store_id"`
	Tags        []Tag           `gorm:"many2many:product_tags;" json:"-"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TagNames returns the names of the loaded tags.
func (p *Product) TagNames() []string {
	names := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		names[i] = t.Name
	}
	return names
}

// HasTag reports whether the loaded tag set contains tagID.
func (p *Product) HasTag(tagID uint) bool {
	for _, t := range p.Tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}
