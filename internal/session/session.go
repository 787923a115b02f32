// Package session runs one in-progress quiz attempt on the client side:
// countdown, answer capture, tab-switch tracking, and the three ways an
// attempt ends (manual submit, timeout auto-submit, integrity termination).
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-platform/internal/models"
)

type Status int

const (
	StatusInProgress Status = iota
	StatusSubmitted
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in-progress"
	case StatusSubmitted:
		return "submitted"
	case StatusTerminated:
		return "terminated"
	}
	return "unknown"
}

const (
	// DefaultDurationSeconds is the attempt budget: 45 minutes.
	DefaultDurationSeconds = 2700
	// TabSwitchLimit is the number of visibility losses that terminates
	// the attempt.
	TabSwitchLimit = 3
)

var ErrSessionFinished = errors.New("session already finished")

// Submitter posts the final answer sheet. The server computes and returns
// the score.
type Submitter interface {
	SubmitAttempt(ctx context.Context, quizID string, answers []*int, terminated bool) (int, error)
}

// Notifier surfaces non-blocking session events to the user.
type Notifier interface {
	TabSwitchWarning(count, limit int)
	SubmissionFailed(err error)
}

type nopNotifier struct{}

func (nopNotifier) TabSwitchWarning(count, limit int) {}
func (nopNotifier) SubmissionFailed(err error)        {}

// Session is the transient state of one attempt. All transitions out of
// StatusInProgress funnel through finishLocked, so a timer tick or a
// visibility event firing after manual submit is a no-op by the status
// check alone, not by timer cancellation.
type Session struct {
	mu          sync.Mutex
	id          string
	quiz        *models.Quiz
	answers     []*int
	remaining   int
	tabSwitches int
	status      Status
	score       int
	submitErr   error

	submitter Submitter
	notifier  Notifier
	confirm   func() bool
}

type Option func(*Session)

// WithDuration overrides the countdown budget, in seconds.
func WithDuration(seconds int) Option {
	return func(s *Session) { s.remaining = seconds }
}

func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithConfirm sets the confirmation step required before a manual submit
// takes effect.
func WithConfirm(f func() bool) Option {
	return func(s *Session) { s.confirm = f }
}

// New starts an attempt at quiz: a blank answer slot per question, full time
// budget, zero tab switches.
func New(quiz *models.Quiz, submitter Submitter, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		quiz:      quiz,
		answers:   make([]*int, len(quiz.Questions)),
		remaining: DefaultDurationSeconds,
		status:    StatusInProgress,
		submitter: submitter,
		notifier:  nopNotifier{},
		confirm:   func() bool { return true },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Answers returns a copy of the current answer sheet.
func (s *Session) Answers() []*int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*int(nil), s.answers...)
}

// Remaining reports the countdown in seconds.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *Session) TabSwitches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabSwitches
}

// Result reports the score echoed by the server, or the submission error if
// the post failed. Only meaningful once the session left StatusInProgress.
func (s *Session) Result() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, s.submitErr
}

// SelectAnswer records the chosen option for a question. Ignored with
// ErrSessionFinished once the session is terminal.
func (s *Session) SelectAnswer(questionIdx, optionIdx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return ErrSessionFinished
	}
	if questionIdx < 0 || questionIdx >= len(s.quiz.Questions) {
		return fmt.Errorf("question index %d out of range", questionIdx)
	}
	if optionIdx < 0 || optionIdx >= len(s.quiz.Questions[questionIdx].Options) {
		return fmt.Errorf("option index %d out of range for question %d", optionIdx, questionIdx)
	}
	v := optionIdx
	s.answers[questionIdx] = &v
	return nil
}

// VisibilityLost handles the host environment reporting the attempt is no
// longer visible. The third loss terminates the attempt and flushes the
// current answers with the termination flag set.
func (s *Session) VisibilityLost(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return
	}
	s.tabSwitches++
	if s.tabSwitches >= TabSwitchLimit {
		s.finishLocked(ctx, StatusTerminated, true)
		return
	}
	s.notifier.TabSwitchWarning(s.tabSwitches, TabSwitchLimit)
}

// Tick advances the countdown by one second. Reaching zero auto-submits
// without confirmation.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return
	}
	s.remaining--
	if s.remaining <= 0 {
		s.finishLocked(ctx, StatusSubmitted, false)
	}
}

// Submit is the user-initiated path. The confirm step runs first; declining
// leaves the session in progress. The returned error is the submission
// failure, if any; the session is already terminal at that point.
func (s *Session) Submit(ctx context.Context) error {
	if s.Status() != StatusInProgress {
		return ErrSessionFinished
	}
	if !s.confirm() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(ctx, StatusSubmitted, false)
	return s.submitErr
}

// finishLocked is the single guarded transition out of StatusInProgress.
// On submission failure the terminal state stands; there is no rollback and
// no automatic retry, only a notification.
func (s *Session) finishLocked(ctx context.Context, to Status, terminated bool) {
	if s.status != StatusInProgress {
		return
	}
	s.status = to
	answers := append([]*int(nil), s.answers...)
	score, err := s.submitter.SubmitAttempt(ctx, s.quiz.ID, answers, terminated)
	if err != nil {
		s.submitErr = err
		s.notifier.SubmissionFailed(err)
		return
	}
	s.score = score
}

// Run drives the countdown and visibility events until the session reaches a
// terminal state or ctx is cancelled. visibility may be nil when the host
// environment cannot report focus changes.
func (s *Session) Run(ctx context.Context, visibility <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		case _, ok := <-visibility:
			if !ok {
				visibility = nil
				continue
			}
			s.VisibilityLost(ctx)
		}
		if s.Status() != StatusInProgress {
			return
		}
	}
}
