package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quiz-platform/internal/models"
	"quiz-platform/internal/service"
)

type QuizHandler struct {
	Service *service.QuizService
}

func NewQuizHandler(s *service.QuizService) *QuizHandler {
	return &QuizHandler{Service: s}
}

func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.Service.ListQuizzes(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch quizzes", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

// ListQuizzesWithCounts is the admin listing: each quiz carries its
// submission count.
func (h *QuizHandler) ListQuizzesWithCounts(c *gin.Context) {
	summaries, err := h.Service.ListQuizzesWithCounts(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch quizzes", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.Service.GetQuiz(context.Background(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Quiz not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get quiz", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var quiz models.Quiz
	if err := c.ShouldBindJSON(&quiz); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid quiz format", "error": err.Error()})
		return
	}
	quiz.CreatorID = userID(c)
	if err := h.Service.CreateQuiz(context.Background(), &quiz); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"message": verr.Reason})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create quiz", "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Quiz created", "quiz": quiz})
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var req struct {
		Title     *string            `json:"title"`
		Questions *[]models.Question `json:"questions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid quiz format", "error": err.Error()})
		return
	}
	err := h.Service.UpdateQuiz(context.Background(), c.Param("id"), req.Title, req.Questions)
	if err != nil {
		h.writeQuizError(c, err, "Failed to update quiz")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz updated"})
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	if err := h.Service.DeleteQuiz(context.Background(), c.Param("id")); err != nil {
		h.writeQuizError(c, err, "Failed to delete quiz")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

func (h *QuizHandler) AddQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid question format", "error": err.Error()})
		return
	}
	quiz, err := h.Service.AddQuestion(context.Background(), c.Param("id"), question)
	if err != nil {
		h.writeQuizError(c, err, "Failed to add question")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question added", "quiz": quiz})
}

func (h *QuizHandler) RemoveQuestion(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid question index"})
		return
	}
	quiz, err := h.Service.RemoveQuestion(context.Background(), c.Param("id"), index)
	if err != nil {
		h.writeQuizError(c, err, "Failed to delete question")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted", "quiz": quiz})
}

func (h *QuizHandler) writeQuizError(c *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Quiz not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Reason})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback, "error": err.Error()})
	}
}
