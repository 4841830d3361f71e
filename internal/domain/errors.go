package domain

import "errors"

// Delete batch validation errors. The messages are part of the wire contract.
var (
	ErrNoFilesArray    = errors.New("NO_FILES_ARRAY")
	ErrEmptyFilesArray = errors.New("EMPTY_FILES_ARRAY")
	ErrMissingKey      = errors.New("MISSING_KEY")
)

// IsValidationError reports whether err is one of the delete batch validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNoFilesArray) ||
		errors.Is(err, ErrEmptyFilesArray) ||
		errors.Is(err, ErrMissingKey)
}
