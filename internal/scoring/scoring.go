// Package scoring grades a submitted answer sheet against a quiz.
package scoring

import "quiz-platform/internal/models"

// Score counts the positions where the submitted answer index matches the
// question's correct answer. Nil entries and indices outside the question's
// option range never match. Answers shorter than the question list are
// tolerated; the unmatched tail simply scores nothing.
func Score(questions []models.Question, answers []*int) int {
	score := 0
	for i, q := range questions {
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		a := *answers[i]
		if a < 0 || a >= len(q.Options) {
			continue
		}
		if a == q.CorrectAnswer {
			score++
		}
	}
	return score
}
