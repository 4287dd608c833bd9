package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/google/uuid"
)

// internalError classifies an unexpected failure. Classified errors pass
// through; anything else is wrapped so it matches common.ErrorInternal and
// still carries its cause.
func internalError(err error) error {
	var e *common.Error
	if errors.As(err, &e) {
		return err
	}
	return common.WrapError(common.KindInternal, "Internal server error", fmt.Errorf("%w: %w", common.ErrorInternal, err))
}

// validID rejects identifiers the store could never hold.
func validID(id, message string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.WrapError(common.KindInvalidInput, message, common.ErrorInvalidID)
	}
	return nil
}
