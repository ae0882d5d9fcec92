package poh

import (
	"errors"
	"fmt"
)

// ErrInvalidLink is matched by every VerificationError.
var ErrInvalidLink = errors.New("poh: invalid link")

// VerificationError reports the position whose tick does not follow from its
// predecessor and auxiliary data.
type VerificationError struct {
	Position int
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("poh: invalid link at position %d", e.Position)
}

func (e *VerificationError) Is(target error) bool {
	return target == ErrInvalidLink
}

// InvalidPosition returns the failing position carried by err, if any.
func InvalidPosition(err error) (int, bool) {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Position, true
	}
	return 0, false
}
