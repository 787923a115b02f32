package service

import (
	"errors"
	"fmt"
)

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAttemptNotFound = errors.New("no submission found")
)

// CooldownError blocks a restricted submission until the attempt window has
// passed.
type CooldownError struct {
	RetryAfterHours int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("You can attempt this quiz again after %d hours.", e.RetryAfterHours)
}

// ValidationError rejects malformed quiz or question shapes at authoring
// time.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
