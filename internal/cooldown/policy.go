// Package cooldown decides whether a user may start a new attempt at a quiz
// given their most recent one.
package cooldown

import (
	"math"
	"time"
)

// Window is the minimum wait between two attempts at the same quiz.
const Window = 24 * time.Hour

type Decision struct {
	Allowed         bool
	RetryAfterHours int
}

// Evaluate applies the attempt window. A zero lastAttempt means no prior
// attempt exists. Exactly 24 hours since the last attempt is allowed.
func Evaluate(now, lastAttempt time.Time) Decision {
	if lastAttempt.IsZero() {
		return Decision{Allowed: true}
	}
	hoursSince := now.Sub(lastAttempt).Hours()
	if hoursSince >= Window.Hours() {
		return Decision{Allowed: true}
	}
	return Decision{
		Allowed:         false,
		RetryAfterHours: int(math.Ceil(Window.Hours() - hoursSince)),
	}
}
