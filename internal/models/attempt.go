package models

import "time"

// Attempt is one persisted quiz submission. A nil entry in Answers means the
// question was left unanswered. Attempts are insert-only: the service never
// updates or deletes them.
type Attempt struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	QuizID     string    `bson:"quiz_id" json:"quizId"`
	UserID     string    `bson:"user_id" json:"userId"`
	Answers    []*int    `bson:"answers" json:"answers"`
	Score      int       `bson:"score" json:"score"`
	Terminated bool      `bson:"terminated" json:"terminated"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
