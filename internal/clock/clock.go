// Package clock abstracts the time source so payment expiry can be
// tested without real delays.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by the wall clock.
func System() Clock {
	return systemClock{}
}
