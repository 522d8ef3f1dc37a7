package models

// Tag is a free-text label. Names are unique per store (store_id, name); the
// database enforces it so concurrent creators cannot both insert.
type Tag struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:255;not null;uniqueIndex:idx_tags_store_name,priority:2" json:"name"`
	StoreID *uint  `gorm:"uniqueIndex:idx_tags_store_name,priority:1" json:"store_id"`
}

// TagWithCount is a tag together with the number of products carrying it.
type TagWithCount struct {
	Tag
	ProductCount int64 `json:"product_count"`
}
