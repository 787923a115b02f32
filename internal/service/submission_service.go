package service

import (
	"context"
	"fmt"
	"time"

	"quiz-platform/internal/cooldown"
	"quiz-platform/internal/models"
	"quiz-platform/internal/scoring"
)

// QuizGetter resolves a quiz definition, returning ErrQuizNotFound when it
// does not exist.
type QuizGetter interface {
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
}

// AttemptStore persists attempts and reads them back for cooldown checks and
// admin review.
type AttemptStore interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	FindLatest(ctx context.Context, quizID, userID string) (*models.Attempt, error)
	FindByQuiz(ctx context.Context, quizID string) ([]models.Attempt, error)
}

// CooldownCache remembers the last attempt timestamp so check-attempt polls
// can skip the database. Entries expire with the attempt window.
type CooldownCache interface {
	GetLastAttempt(ctx context.Context, quizID, userID string) (time.Time, bool)
	SetLastAttempt(ctx context.Context, quizID, userID string, at time.Time)
}

type SubmissionService struct {
	Quizzes  QuizGetter
	Attempts AttemptStore
	Cache    CooldownCache // optional

	now func() time.Time
}

func NewSubmissionService(quizzes QuizGetter, attempts AttemptStore, cache CooldownCache) *SubmissionService {
	return &SubmissionService{
		Quizzes:  quizzes,
		Attempts: attempts,
		Cache:    cache,
		now:      time.Now,
	}
}

// Submit handles all three submission paths identically; manual, timeout and
// terminated submissions differ only in the flags the caller passes. On the
// restricted path the cooldown check runs first and a denial persists
// nothing. The check-then-insert pair is deliberately not atomic: two
// near-simultaneous submissions can both pass, which is acceptable here.
func (s *SubmissionService) Submit(ctx context.Context, quizID, userID string, answers []*int, terminated, restricted bool) (int, error) {
	if restricted {
		last, err := s.Attempts.FindLatest(ctx, quizID, userID)
		if err != nil {
			return 0, fmt.Errorf("find latest attempt: %w", err)
		}
		var lastAt time.Time
		if last != nil {
			lastAt = last.CreatedAt
		}
		if d := cooldown.Evaluate(s.now(), lastAt); !d.Allowed {
			return 0, &CooldownError{RetryAfterHours: d.RetryAfterHours}
		}
	}

	quiz, err := s.Quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return 0, err
	}

	attempt := &models.Attempt{
		QuizID:     quizID,
		UserID:     userID,
		Answers:    answers,
		Score:      scoring.Score(quiz.Questions, answers),
		Terminated: terminated,
		CreatedAt:  s.now(),
	}
	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return 0, fmt.Errorf("persist attempt: %w", err)
	}

	if s.Cache != nil {
		s.Cache.SetLastAttempt(ctx, quizID, userID, attempt.CreatedAt)
	}
	return attempt.Score, nil
}

// LastSubmission returns the caller's most recent attempt at a quiz.
func (s *SubmissionService) LastSubmission(ctx context.Context, quizID, userID string) (*models.Attempt, error) {
	attempt, err := s.Attempts.FindLatest(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

// AttemptStatus mirrors the check-attempt response: whether the cooldown is
// currently blocking the caller, and a human-readable retry message when it
// is.
type AttemptStatus struct {
	Attempted bool   `json:"attempted"`
	Message   string `json:"message,omitempty"`
}

// CheckAttempt reports the caller's cooldown status for a quiz. The cache is
// consulted first; entries expire exactly when the window does, so a hit is
// always a live cooldown.
func (s *SubmissionService) CheckAttempt(ctx context.Context, quizID, userID string) (*AttemptStatus, error) {
	var lastAt time.Time
	cached := false
	if s.Cache != nil {
		lastAt, cached = s.Cache.GetLastAttempt(ctx, quizID, userID)
	}
	if !cached {
		last, err := s.Attempts.FindLatest(ctx, quizID, userID)
		if err != nil {
			return nil, fmt.Errorf("find latest attempt: %w", err)
		}
		if last != nil {
			lastAt = last.CreatedAt
			if s.Cache != nil {
				s.Cache.SetLastAttempt(ctx, quizID, userID, lastAt)
			}
		}
	}

	d := cooldown.Evaluate(s.now(), lastAt)
	if d.Allowed {
		return &AttemptStatus{Attempted: false}, nil
	}
	return &AttemptStatus{
		Attempted: true,
		Message:   fmt.Sprintf("You can retake this quiz after %d hours.", d.RetryAfterHours),
	}, nil
}

// AttemptsByQuiz lists every attempt at a quiz for admin review. The quiz
// must exist.
func (s *SubmissionService) AttemptsByQuiz(ctx context.Context, quizID string) ([]models.Attempt, error) {
	if _, err := s.Quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.Attempts.FindByQuiz(ctx, quizID)
}
