package db

import (
	"strings"

	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
)

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. When constraintName is provided, the helper looks for
// the constraint text in the error message. Both the Postgres and sqlite
// error vocabularies are recognized.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// ClassifyWriteError maps a raw storage error onto the service error
// taxonomy: duplicate keys become CodeConflict so callers can treat them as
// the benign-duplicate path, everything else is a retryable dependency
// failure.
func ClassifyWriteError(err error, constraintName, message string) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err, constraintName) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
