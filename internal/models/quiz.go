package models

import "time"

type Question struct {
	QuestionText  string   `bson:"question_text" json:"questionText"`
	Options       []string `bson:"options" json:"options"`
	CorrectAnswer int      `bson:"correct_answer" json:"correctAnswer"`
}

// Quiz is the admin-authored definition students attempt. The student-facing
// fetch currently returns it verbatim, correct answers included.
type Quiz struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	Title     string     `bson:"title" json:"title"`
	CreatorID string     `bson:"creator_id" json:"creatorId"`
	Questions []Question `bson:"questions" json:"questions"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}
