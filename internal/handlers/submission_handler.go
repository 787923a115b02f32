package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-platform/internal/service"
)

type SubmissionHandler struct {
	Service *service.SubmissionService
}

func NewSubmissionHandler(s *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{Service: s}
}

type submitRequest struct {
	Answers    []*int `json:"answers"`
	Terminated bool   `json:"terminated"`
}

// Submit is the restricted path: the 24-hour cooldown applies.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	h.handleSubmission(c, true)
}

// SubmitLegacy bypasses the cooldown entirely. This is a deliberate
// administrative override, not an oversight.
func (h *SubmissionHandler) SubmitLegacy(c *gin.Context) {
	h.handleSubmission(c, false)
}

func (h *SubmissionHandler) handleSubmission(c *gin.Context, restricted bool) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid submission format", "error": err.Error()})
		return
	}

	score, err := h.Service.Submit(context.Background(), c.Param("id"), userID(c), req.Answers, req.Terminated, restricted)
	if err != nil {
		var cooldownErr *service.CooldownError
		switch {
		case errors.As(err, &cooldownErr):
			c.JSON(http.StatusForbidden, gin.H{"message": cooldownErr.Error(), "retryAfterHours": cooldownErr.RetryAfterHours})
		case errors.Is(err, service.ErrQuizNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Quiz not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit quiz", "error": err.Error()})
		}
		return
	}

	c.Set("attempt_terminated", req.Terminated)
	c.JSON(http.StatusCreated, gin.H{"message": "Quiz submitted successfully", "score": score})
}

func (h *SubmissionHandler) LastSubmission(c *gin.Context) {
	attempt, err := h.Service.LastSubmission(context.Background(), c.Param("id"), userID(c))
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No submission found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch last submission"})
		return
	}
	c.JSON(http.StatusOK, attempt)
}

func (h *SubmissionHandler) CheckAttempt(c *gin.Context) {
	status, err := h.Service.CheckAttempt(context.Background(), c.Param("id"), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error checking attempt status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListQuizAttempts is the admin review of every submission to a quiz.
func (h *SubmissionHandler) ListQuizAttempts(c *gin.Context) {
	attempts, err := h.Service.AttemptsByQuiz(context.Background(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Quiz not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, attempts)
}
