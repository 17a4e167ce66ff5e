package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrStaleVersion is returned when a versioned update matched no row because
// another writer changed it first.
var ErrStaleVersion = errors.New("record was modified concurrently")

// IsDuplicateKey reports whether err is a unique index violation. TranslateError
// covers the supported drivers; the message check catches connections opened
// without it.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
