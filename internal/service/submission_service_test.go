package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-platform/internal/models"
)

type fakeQuizGetter struct {
	quizzes map[string]*models.Quiz
}

func (f *fakeQuizGetter) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

type fakeAttemptStore struct {
	created []*models.Attempt
	latest  map[string]*models.Attempt // key quizID+"/"+userID
}

func (f *fakeAttemptStore) Create(ctx context.Context, attempt *models.Attempt) error {
	f.created = append(f.created, attempt)
	return nil
}

func (f *fakeAttemptStore) FindLatest(ctx context.Context, quizID, userID string) (*models.Attempt, error) {
	return f.latest[quizID+"/"+userID], nil
}

func (f *fakeAttemptStore) FindByQuiz(ctx context.Context, quizID string) ([]models.Attempt, error) {
	var out []models.Attempt
	for _, a := range f.created {
		if a.QuizID == quizID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeCooldownCache struct {
	entries map[string]time.Time
}

func (f *fakeCooldownCache) GetLastAttempt(ctx context.Context, quizID, userID string) (time.Time, bool) {
	at, ok := f.entries[quizID+"/"+userID]
	return at, ok
}

func (f *fakeCooldownCache) SetLastAttempt(ctx context.Context, quizID, userID string, at time.Time) {
	f.entries[quizID+"/"+userID] = at
}

func intPtr(v int) *int { return &v }

func newFixture(latest map[string]*models.Attempt) (*SubmissionService, *fakeAttemptStore, time.Time) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeAttemptStore{latest: latest}
	svc := NewSubmissionService(&fakeQuizGetter{quizzes: map[string]*models.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Networking Basics",
			Questions: []models.Question{
				{QuestionText: "q1", Options: []string{"a", "b", "c"}, CorrectAnswer: 1},
				{QuestionText: "q2", Options: []string{"a", "b", "c"}, CorrectAnswer: 0},
				{QuestionText: "q3", Options: []string{"a", "b", "c"}, CorrectAnswer: 2},
			},
		},
	}}, store, nil)
	svc.now = func() time.Time { return now }
	return svc, store, now
}

func TestSubmitScoresAndPersists(t *testing.T) {
	svc, store, now := newFixture(nil)

	score, err := svc.Submit(context.Background(), "quiz-1", "user-1",
		[]*int{intPtr(1), intPtr(0), intPtr(1)}, false, true)

	require.NoError(t, err)
	assert.Equal(t, 2, score)
	require.Len(t, store.created, 1)
	attempt := store.created[0]
	assert.Equal(t, "quiz-1", attempt.QuizID)
	assert.Equal(t, "user-1", attempt.UserID)
	assert.Equal(t, 2, attempt.Score)
	assert.False(t, attempt.Terminated)
	assert.Equal(t, now, attempt.CreatedAt)
}

func TestSubmitAllUnanswered(t *testing.T) {
	svc, store, _ := newFixture(nil)

	score, err := svc.Submit(context.Background(), "quiz-1", "user-1",
		[]*int{nil, nil, nil}, false, true)

	require.NoError(t, err)
	assert.Equal(t, 0, score)
	require.Len(t, store.created, 1)
}

func TestSubmitTerminatedFlagPersisted(t *testing.T) {
	svc, store, _ := newFixture(nil)

	_, err := svc.Submit(context.Background(), "quiz-1", "user-1",
		[]*int{intPtr(1), nil, nil}, true, false)

	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.True(t, store.created[0].Terminated)
}

func TestSubmitRestrictedDeniedWithinWindow(t *testing.T) {
	latest := map[string]*models.Attempt{}
	svc, store, now := newFixture(latest)
	latest["quiz-1/user-1"] = &models.Attempt{CreatedAt: now.Add(-5 * time.Hour)}

	_, err := svc.Submit(context.Background(), "quiz-1", "user-1",
		[]*int{intPtr(1), intPtr(0), intPtr(2)}, false, true)

	var cooldownErr *CooldownError
	require.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, 19, cooldownErr.RetryAfterHours)
	assert.Empty(t, store.created, "denied submission must persist nothing")
}

func TestSubmitRestrictedAllowedAtExactWindow(t *testing.T) {
	latest := map[string]*models.Attempt{}
	svc, store, now := newFixture(latest)
	latest["quiz-1/user-1"] = &models.Attempt{CreatedAt: now.Add(-24 * time.Hour)}

	score, err := svc.Submit(context.Background(), "quiz-1", "user-1",
		[]*int{intPtr(1), intPtr(0), intPtr(2)}, false, true)

	require.NoError(t, err)
	assert.Equal(t, 3, score)
	assert.Len(t, store.created, 1)
}

func TestSubmitUnrestrictedBypassesCooldown(t *testing.T) {
	latest := map[string]*models.Attempt{}
	svc, store, now := newFixture(latest)
	latest["quiz-1/user-1"] = &models.Attempt{CreatedAt: now.Add(-time.Hour)}

	score, err := svc.Submit(context.Background(), "quiz-1", "user-1",
		[]*int{intPtr(1), intPtr(0), intPtr(2)}, false, false)

	require.NoError(t, err)
	assert.Equal(t, 3, score)
	assert.Len(t, store.created, 1)
}

func TestSubmitUnknownQuiz(t *testing.T) {
	svc, store, _ := newFixture(nil)

	_, err := svc.Submit(context.Background(), "missing", "user-1", nil, false, false)

	assert.ErrorIs(t, err, ErrQuizNotFound)
	assert.Empty(t, store.created)
}

func TestLastSubmission(t *testing.T) {
	latest := map[string]*models.Attempt{}
	svc, _, now := newFixture(latest)

	_, err := svc.LastSubmission(context.Background(), "quiz-1", "user-1")
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	want := &models.Attempt{ID: "a1", QuizID: "quiz-1", UserID: "user-1", Score: 2, CreatedAt: now}
	latest["quiz-1/user-1"] = want

	got, err := svc.LastSubmission(context.Background(), "quiz-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCheckAttempt(t *testing.T) {
	latest := map[string]*models.Attempt{}
	svc, _, now := newFixture(latest)

	status, err := svc.CheckAttempt(context.Background(), "quiz-1", "user-1")
	require.NoError(t, err)
	assert.False(t, status.Attempted)
	assert.Empty(t, status.Message)

	latest["quiz-1/user-1"] = &models.Attempt{CreatedAt: now.Add(-23*time.Hour - 59*time.Minute)}
	status, err = svc.CheckAttempt(context.Background(), "quiz-1", "user-1")
	require.NoError(t, err)
	assert.True(t, status.Attempted)
	assert.Equal(t, "You can retake this quiz after 1 hours.", status.Message)

	latest["quiz-1/user-1"] = &models.Attempt{CreatedAt: now.Add(-24 * time.Hour)}
	status, err = svc.CheckAttempt(context.Background(), "quiz-1", "user-1")
	require.NoError(t, err)
	assert.False(t, status.Attempted)
}

func TestCheckAttemptUsesCache(t *testing.T) {
	latest := map[string]*models.Attempt{}
	svc, _, now := newFixture(latest)
	cache := &fakeCooldownCache{entries: map[string]time.Time{}}
	svc.Cache = cache

	// Store is empty but the cache remembers a recent attempt.
	cache.entries["quiz-1/user-1"] = now.Add(-2 * time.Hour)

	status, err := svc.CheckAttempt(context.Background(), "quiz-1", "user-1")
	require.NoError(t, err)
	assert.True(t, status.Attempted)

	// A cache miss falls through to the store and backfills the cache.
	latest["quiz-1/user-2"] = &models.Attempt{CreatedAt: now.Add(-3 * time.Hour)}
	status, err = svc.CheckAttempt(context.Background(), "quiz-1", "user-2")
	require.NoError(t, err)
	assert.True(t, status.Attempted)
	cached, ok := cache.GetLastAttempt(context.Background(), "quiz-1", "user-2")
	assert.True(t, ok)
	assert.Equal(t, now.Add(-3*time.Hour), cached)
}

func TestSubmitRefreshesCache(t *testing.T) {
	svc, _, now := newFixture(nil)
	cache := &fakeCooldownCache{entries: map[string]time.Time{}}
	svc.Cache = cache

	_, err := svc.Submit(context.Background(), "quiz-1", "user-1",
		[]*int{intPtr(1), nil, nil}, false, false)
	require.NoError(t, err)

	cached, ok := cache.GetLastAttempt(context.Background(), "quiz-1", "user-1")
	assert.True(t, ok)
	assert.Equal(t, now, cached)
}

func TestAttemptsByQuizRequiresQuiz(t *testing.T) {
	svc, _, _ := newFixture(nil)

	_, err := svc.AttemptsByQuiz(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrQuizNotFound)

	_, submitErr := svc.Submit(context.Background(), "quiz-1", "user-1",
		[]*int{intPtr(1), nil, nil}, false, false)
	require.NoError(t, submitErr)

	attempts, err := svc.AttemptsByQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestCooldownErrorMessage(t *testing.T) {
	err := &CooldownError{RetryAfterHours: 19}
	assert.Equal(t, "You can attempt this quiz again after 19 hours.", err.Error())
	assert.False(t, errors.Is(err, ErrQuizNotFound))
}
