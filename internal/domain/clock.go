package domain

import "github.com/jonboulle/clockwork"

// clock stamps reports and sink headers. Tests freeze it via SetClock so that
// serialized output is reproducible.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
