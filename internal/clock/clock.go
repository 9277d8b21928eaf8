// Package clock provides an injectable source of the current time so that
// TTL expiry can be tested deterministically (spec design note, §9).
package clock

import "time"

// Clock supplies the current instant. Production code uses Real; tests use
// a manually-advanced fake.
type Clock interface {
	Now() time.Time
}

// Real is the Clock backed by the system wall clock.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time {
	return time.Now()
}
