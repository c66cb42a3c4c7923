package datastore

import (
	"strings"

	"gorm.io/gorm"

	"github.com/gardenbase/seedvault/internal/errors"
)

// classifyDBError wraps a database error with a category derived from the
// driver message. The classification covers the handful of failure kinds
// that get distinct user-facing treatment: missing table, duplicate
// entry, schema mismatch, and everything else.
func classifyDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	category := errors.CategoryDatabase
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		category = errors.CategoryNotFound
	case isMissingTable(err):
		category = errors.CategoryMissingTable
	case isDuplicateEntry(err):
		category = errors.CategoryDuplicate
	case isSchemaMismatch(err):
		category = errors.CategorySchema
	}

	return errors.New(err).
		Component("datastore").
		Category(category).
		Context("operation", operation).
		Build()
}

// The driver message probes below cover SQLite and MySQL, the two
// supported dialects.

func isMissingTable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "doesn't exist")
}

func isDuplicateEntry(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}

func isSchemaMismatch(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "Unknown column")
}
