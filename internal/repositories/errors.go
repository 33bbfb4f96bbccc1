package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrRecordNotFound is returned by lookups that match nothing.
var ErrRecordNotFound = gorm.ErrRecordNotFound

// ErrDuplicate reports a unique constraint violation.
var ErrDuplicate = errors.New("record already exists")

// isUniqueViolation recognises unique constraint errors from SQLite and PostgreSQL.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
