package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Service error taxonomy. Handlers map these onto HTTP statuses
// (404 / 503 / 400); services never swallow store errors, they translate
// them and let the caller decide the user-visible response.
var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// translateStoreErr maps a gorm/database error onto the taxonomy,
// keeping the original message in the chain for logs.
func translateStoreErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %v: %w", what, err, ErrStoreUnavailable)
}
