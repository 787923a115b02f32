package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-platform/internal/models"
	"quiz-platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuizService struct {
	Repo     *repository.QuizRepository
	Attempts *repository.AttemptRepository
}

func NewQuizService(repo *repository.QuizRepository, attempts *repository.AttemptRepository) *QuizService {
	return &QuizService{Repo: repo, Attempts: attempts}
}

// QuizSummary is the admin listing row: a quiz plus how many attempts it has
// received.
type QuizSummary struct {
	models.Quiz
	SubmissionsCount int64 `json:"submissionsCount"`
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	return s.Repo.FindAll(ctx)
}

func (s *QuizService) ListQuizzesWithCounts(ctx context.Context) ([]QuizSummary, error) {
	quizzes, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		count, err := s.Attempts.CountByQuiz(ctx, quiz.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, QuizSummary{Quiz: quiz, SubmissionsCount: count})
	}
	return summaries, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if err := validateQuestions(quiz.Questions); err != nil {
		return err
	}
	now := time.Now()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	return s.Repo.Create(ctx, quiz)
}

// UpdateQuiz applies a partial update: nil title or questions leaves the
// field untouched.
func (s *QuizService) UpdateQuiz(ctx context.Context, id string, title *string, questions *[]models.Question) error {
	if _, err := s.GetQuiz(ctx, id); err != nil {
		return err
	}
	update := bson.M{"updated_at": time.Now()}
	if title != nil {
		update["title"] = *title
	}
	if questions != nil {
		if err := validateQuestions(*questions); err != nil {
			return err
		}
		update["questions"] = *questions
	}
	return s.Repo.Update(ctx, id, update)
}

func (s *QuizService) DeleteQuiz(ctx context.Context, id string) error {
	if _, err := s.GetQuiz(ctx, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

func (s *QuizService) AddQuestion(ctx context.Context, id string, question models.Question) (*models.Quiz, error) {
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateQuestion(question); err != nil {
		return nil, err
	}
	quiz.Questions = append(quiz.Questions, question)
	if err := s.Repo.Update(ctx, id, bson.M{"questions": quiz.Questions, "updated_at": time.Now()}); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) RemoveQuestion(ctx context.Context, id string, index int) (*models.Quiz, error) {
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(quiz.Questions) {
		return nil, &ValidationError{Reason: "Invalid question index"}
	}
	quiz.Questions = append(quiz.Questions[:index], quiz.Questions[index+1:]...)
	if err := s.Repo.Update(ctx, id, bson.M{"questions": quiz.Questions, "updated_at": time.Now()}); err != nil {
		return nil, err
	}
	return quiz, nil
}

func validateQuestions(questions []models.Question) error {
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				return &ValidationError{Reason: fmt.Sprintf("question %d: %s", i, verr.Reason)}
			}
			return err
		}
	}
	return nil
}

func validateQuestion(q models.Question) error {
	if q.QuestionText == "" {
		return &ValidationError{Reason: "question text is required"}
	}
	if len(q.Options) < 1 {
		return &ValidationError{Reason: "at least one option is required"}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return &ValidationError{Reason: "correct answer index out of range"}
	}
	return nil
}
