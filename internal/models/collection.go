package models

import "time"

// Collection groups products. A collection bound to a Tag is "smart": its
// membership is whatever currently carries the tag. Without a tag it is
// "static" and Products holds the persisted membership.
type Collection struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null;index" json:"name"`
	Slug            string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description     string    `gorm:"type:text" json:"description"`
	MetaDescription string    `gorm:"type:text" json:"meta_description"`
	ShopifyID       *string   `gorm:"size:64;index" json:"shopify_id"`
	StoreID         *uint     `gorm:"index" json:"store_id"`
	TagID           *uint     `gorm:"index" json:"tag_id"`
	Tag             *Tag      `json:"-"`
	Products        []Product `gorm:"many2many:collection_products;" json:"-"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsSmart reports whether membership is derived from a tag.
func (c *Collection) IsSmart() bool {
	return c.TagID != nil
}
