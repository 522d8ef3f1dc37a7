package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrStoreNotFound      = errors.New("store not found")
	ErrEnvVarNotFound     = errors.New("environment variable not found")
	ErrDuplicate          = errors.New("record already exists")
	ErrSlugExhausted      = errors.New("could not allocate a unique slug")
)

// isDuplicate reports whether err is a unique-constraint violation. gorm
// translates most of them; the string checks cover drivers that do not.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// Page normalizes 1-based pagination input into offset and limit.
func Page(page, perPage int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	return (page - 1) * perPage, perPage
}
