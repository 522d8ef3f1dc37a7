package tenant

import (
	"fmt"

	"gorm.io/gorm"
)

// Scope identifies which store an operation applies to. The zero value is the
// "all stores" variant used when no store exists yet.
type Scope struct {
	storeID uint
	set     bool
}

// AllStores returns the unfiltered scope.
func AllStores() Scope {
	return Scope{}
}

// ForStore returns a scope restricted to one store.
func ForStore(id uint) Scope {
	return Scope{storeID: id, set: true}
}

// IsAll reports whether the scope is unfiltered.
func (s Scope) IsAll() bool {
	return !s.set
}

// StoreID returns the store id and whether the scope is store-specific.
func (s Scope) StoreID() (uint, bool) {
	return s.storeID, s.set
}

// StoreIDPtr is the value stamped on rows created under this scope.
func (s Scope) StoreIDPtr() *uint {
	if !s.set {
		return nil
	}
	id := s.storeID
	return &id
}

// Apply returns a GORM scope that filters by the store column of the queried
// table. column is usually "store_id" or a qualified "products.store_id".
func (s Scope) Apply(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !s.set {
			return db
		}
		return db.Where(fmt.Sprintf("%s = ?", column), s.storeID)
	}
}

func (s Scope) String() string {
	if !s.set {
		return "all"
	}
	return fmt.Sprintf("store:%d", s.storeID)
}
