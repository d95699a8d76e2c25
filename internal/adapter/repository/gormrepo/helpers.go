package gormrepo

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error onto the domain sentinel while keeping
// both in the chain.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", domainErr, err)
	}
	return err
}
