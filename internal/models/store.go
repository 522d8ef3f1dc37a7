package models

import "time"

// Store is the tenant root: one connected Shopify storefront.
type Store struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	URL         string    `gorm:"size:255;not null;uniqueIndex" json:"url"`
	AccessToken string    `gorm:"size:255" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
