// Package system provides the wall clock used to stamp export runs.
package system

import (
	"time"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

var _ dataset.Clock = Clock{}

// Clock implements dataset.Clock using time.Now in UTC.
type Clock struct{}

// New creates a new Clock.
func New() Clock {
	return Clock{}
}

// Now returns the current UTC time truncated to the microsecond, the
// resolution Postgres timestamptz keeps.
func (Clock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
