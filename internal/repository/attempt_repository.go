package repository

import (
	"context"
	"errors"

	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("attempts")}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.Col.InsertOne(ctx, attempt)
	return err
}

// FindLatest returns the most recent attempt for (quiz, user), or nil when
// the user has never attempted the quiz.
func (r *AttemptRepository) FindLatest(ctx context.Context, quizID, userID string) (*models.Attempt, error) {
	opts := options.FindOne().SetSort(bson.M{"created_at": -1})
	var attempt models.Attempt
	err := r.Col.FindOne(ctx, bson.M{"quiz_id": quizID, "user_id": userID}, opts).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) FindByQuiz(ctx context.Context, quizID string) ([]models.Attempt, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.Col.Find(ctx, bson.M{"quiz_id": quizID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.Attempt
	for cur.Next(ctx) {
		var a models.Attempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

func (r *AttemptRepository) CountByQuiz(ctx context.Context, quizID string) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{"quiz_id": quizID})
}
