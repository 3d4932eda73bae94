package service

import "time"

// Clock abstracts the current time so detection can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
