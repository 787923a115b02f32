package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-platform/internal/models"
)

type recordedSubmission struct {
	quizID     string
	answers    []*int
	terminated bool
}

type fakeSubmitter struct {
	submissions []recordedSubmission
	score       int
	err         error
}

func (f *fakeSubmitter) SubmitAttempt(ctx context.Context, quizID string, answers []*int, terminated bool) (int, error) {
	f.submissions = append(f.submissions, recordedSubmission{quizID, answers, terminated})
	if f.err != nil {
		return 0, f.err
	}
	return f.score, nil
}

type recordingNotifier struct {
	warnings []int
	failures []error
}

func (n *recordingNotifier) TabSwitchWarning(count, limit int) { n.warnings = append(n.warnings, count) }
func (n *recordingNotifier) SubmissionFailed(err error)       { n.failures = append(n.failures, err) }

func testQuiz() *models.Quiz {
	return &models.Quiz{
		ID:    "quiz-1",
		Title: "Networking Basics",
		Questions: []models.Question{
			{QuestionText: "q1", Options: []string{"a", "b", "c"}, CorrectAnswer: 1},
			{QuestionText: "q2", Options: []string{"a", "b"}, CorrectAnswer: 0},
			{QuestionText: "q3", Options: []string{"a", "b", "c"}, CorrectAnswer: 2},
		},
	}
}

func TestNewSessionStartsBlank(t *testing.T) {
	s := New(testQuiz(), &fakeSubmitter{})

	assert.Equal(t, StatusInProgress, s.Status())
	assert.Equal(t, DefaultDurationSeconds, s.Remaining())
	assert.Equal(t, 0, s.TabSwitches())
	require.Len(t, s.Answers(), 3)
	for _, a := range s.Answers() {
		assert.Nil(t, a)
	}
}

func TestSelectAnswerOverwritesSlot(t *testing.T) {
	s := New(testQuiz(), &fakeSubmitter{})

	require.NoError(t, s.SelectAnswer(0, 2))
	require.NoError(t, s.SelectAnswer(0, 1))

	answers := s.Answers()
	require.NotNil(t, answers[0])
	assert.Equal(t, 1, *answers[0])
	assert.Equal(t, StatusInProgress, s.Status())
}

func TestSelectAnswerBounds(t *testing.T) {
	s := New(testQuiz(), &fakeSubmitter{})

	assert.Error(t, s.SelectAnswer(-1, 0))
	assert.Error(t, s.SelectAnswer(3, 0))
	assert.Error(t, s.SelectAnswer(1, 2))
	assert.Error(t, s.SelectAnswer(1, -1))
}

func TestManualSubmit(t *testing.T) {
	sub := &fakeSubmitter{score: 2}
	s := New(testQuiz(), sub)

	require.NoError(t, s.SelectAnswer(0, 1))
	require.NoError(t, s.SelectAnswer(1, 0))

	require.NoError(t, s.Submit(context.Background()))

	assert.Equal(t, StatusSubmitted, s.Status())
	require.Len(t, sub.submissions, 1)
	assert.False(t, sub.submissions[0].terminated)
	assert.Equal(t, "quiz-1", sub.submissions[0].quizID)

	score, err := s.Result()
	assert.NoError(t, err)
	assert.Equal(t, 2, score)
}

func TestManualSubmitDeclinedConfirmation(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(testQuiz(), sub, WithConfirm(func() bool { return false }))

	require.NoError(t, s.Submit(context.Background()))

	assert.Equal(t, StatusInProgress, s.Status())
	assert.Empty(t, sub.submissions)
}

func TestTabSwitchWarningsThenTermination(t *testing.T) {
	sub := &fakeSubmitter{}
	n := &recordingNotifier{}
	s := New(testQuiz(), sub, WithNotifier(n))
	require.NoError(t, s.SelectAnswer(2, 2))

	s.VisibilityLost(context.Background())
	s.VisibilityLost(context.Background())

	assert.Equal(t, StatusInProgress, s.Status())
	assert.Equal(t, []int{1, 2}, n.warnings)
	assert.Empty(t, sub.submissions)

	s.VisibilityLost(context.Background())

	assert.Equal(t, StatusTerminated, s.Status())
	require.Len(t, sub.submissions, 1)
	assert.True(t, sub.submissions[0].terminated)
	require.NotNil(t, sub.submissions[0].answers[2])
	assert.Equal(t, 2, *sub.submissions[0].answers[2])
}

func TestTimerExpiryAutoSubmits(t *testing.T) {
	sub := &fakeSubmitter{score: 1}
	s := New(testQuiz(), sub, WithDuration(3))
	require.NoError(t, s.SelectAnswer(1, 0))

	ctx := context.Background()
	s.Tick(ctx)
	s.Tick(ctx)
	assert.Equal(t, StatusInProgress, s.Status())
	assert.Equal(t, 1, s.Remaining())

	s.Tick(ctx)

	assert.Equal(t, StatusSubmitted, s.Status())
	require.Len(t, sub.submissions, 1)
	assert.False(t, sub.submissions[0].terminated)
}

func TestNoReentryAfterSubmit(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(testQuiz(), sub)
	ctx := context.Background()

	require.NoError(t, s.Submit(ctx))
	require.Len(t, sub.submissions, 1)

	// Late triggers must not change state or submit again.
	s.VisibilityLost(ctx)
	s.Tick(ctx)
	assert.ErrorIs(t, s.SelectAnswer(0, 0), ErrSessionFinished)
	assert.ErrorIs(t, s.Submit(ctx), ErrSessionFinished)

	assert.Equal(t, StatusSubmitted, s.Status())
	assert.Len(t, sub.submissions, 1)
}

func TestNoReentryAfterTermination(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(testQuiz(), sub)
	ctx := context.Background()

	for i := 0; i < TabSwitchLimit; i++ {
		s.VisibilityLost(ctx)
	}
	require.Equal(t, StatusTerminated, s.Status())
	require.Len(t, sub.submissions, 1)

	s.VisibilityLost(ctx)
	s.Tick(ctx)
	assert.ErrorIs(t, s.SelectAnswer(0, 0), ErrSessionFinished)

	assert.Equal(t, StatusTerminated, s.Status())
	assert.Len(t, sub.submissions, 1)
}

func TestTimerCountsTabSwitchLimitOnlyWhileInProgress(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(testQuiz(), sub, WithDuration(1))
	ctx := context.Background()

	s.Tick(ctx)
	require.Equal(t, StatusSubmitted, s.Status())

	// Visibility losses after timeout never accumulate toward termination.
	for i := 0; i < TabSwitchLimit; i++ {
		s.VisibilityLost(ctx)
	}
	assert.Equal(t, 0, s.TabSwitches())
	assert.Equal(t, StatusSubmitted, s.Status())
	assert.Len(t, sub.submissions, 1)
}

func TestSubmissionFailureKeepsTerminalState(t *testing.T) {
	wantErr := errors.New("connection refused")
	sub := &fakeSubmitter{err: wantErr}
	n := &recordingNotifier{}
	s := New(testQuiz(), sub, WithNotifier(n))
	ctx := context.Background()

	err := s.Submit(ctx)
	assert.ErrorIs(t, err, wantErr)

	// Terminal state stands; no rollback, no automatic retry.
	assert.Equal(t, StatusSubmitted, s.Status())
	assert.Len(t, sub.submissions, 1)
	require.Len(t, n.failures, 1)
	assert.ErrorIs(t, n.failures[0], wantErr)

	_, resultErr := s.Result()
	assert.ErrorIs(t, resultErr, wantErr)
}

func TestTerminatedSubmissionFailureSurfaced(t *testing.T) {
	wantErr := errors.New("gateway timeout")
	sub := &fakeSubmitter{err: wantErr}
	n := &recordingNotifier{}
	s := New(testQuiz(), sub, WithNotifier(n))
	ctx := context.Background()

	for i := 0; i < TabSwitchLimit; i++ {
		s.VisibilityLost(ctx)
	}

	assert.Equal(t, StatusTerminated, s.Status())
	require.Len(t, n.failures, 1)
	assert.Len(t, sub.submissions, 1)
}

func TestRunStopsAtTerminalState(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(testQuiz(), sub, WithDuration(1))

	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), nil)
		close(done)
	}()

	<-done
	assert.Equal(t, StatusSubmitted, s.Status())
	assert.Len(t, sub.submissions, 1)
}

func TestRunHandlesVisibilityEvents(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(testQuiz(), sub)

	visibility := make(chan struct{})
	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), visibility)
		close(done)
	}()

	for i := 0; i < TabSwitchLimit; i++ {
		visibility <- struct{}{}
	}

	<-done
	assert.Equal(t, StatusTerminated, s.Status())
	require.Len(t, sub.submissions, 1)
	assert.True(t, sub.submissions[0].terminated)
}
