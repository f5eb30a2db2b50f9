package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock supplies "today" for date validation and the generatedAt stamp.
var clock = clockwork.NewRealClock()

// SetClock replaces the package clock. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Today returns the current UTC calendar day at midnight.
func Today() time.Time {
	return truncateDay(clock.Now().UTC())
}
