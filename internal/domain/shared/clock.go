package shared

import "time"

// Clock provides the current time. Services take a Clock instead of calling
// time.Now directly so payroll cutoffs and deadlines are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by the wall clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock pinned to a single instant, for tests
type FixedClock struct {
	Time time.Time
}

// Now returns the pinned instant
func (c FixedClock) Now() time.Time {
	return c.Time
}
