package dayview

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks host programming errors: wrong hour label
	// counts, mismatched event lists, out of range hours or invalid Config
	// values. Callers should fix their input rather than retry.
	ErrConfiguration = errors.New("dayview: configuration error")

	// ErrNotMeasured is returned by geometry queries issued before the first
	// Measure call or after the content changed.
	ErrNotMeasured = errors.New("dayview: layout has not been measured")
)

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
