// Package client is the HTTP side of an attempt: it fetches quiz
// definitions and posts finished answer sheets, implementing
// session.Submitter.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quiz-platform/internal/models"
	"quiz-platform/internal/service"
)

const requestTimeout = 15 * time.Second

// APIError is a non-2xx response with the server's message decoded.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type HTTPClient struct {
	baseURL    string
	userID     string
	restricted bool
	httpClient *http.Client
}

type Option func(*HTTPClient)

// WithRestricted routes submissions through the cooldown-enforced endpoint
// instead of the legacy one.
func WithRestricted() Option {
	return func(c *HTTPClient) { c.restricted = true }
}

func NewHTTPClient(baseURL, userID string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    baseURL,
		userID:     userID,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) FetchQuiz(ctx context.Context, quizID string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/quizzes/%s", quizID), nil, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// SubmitAttempt posts the final answer sheet and returns the server-computed
// score.
func (c *HTTPClient) SubmitAttempt(ctx context.Context, quizID string, answers []*int, terminated bool) (int, error) {
	endpoint := "answer"
	if c.restricted {
		endpoint = "submit"
	}
	body := map[string]interface{}{
		"answers":    answers,
		"terminated": terminated,
	}
	var resp struct {
		Score int `json:"score"`
	}
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/quizzes/%s/%s", quizID, endpoint), body, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Score, nil
}

func (c *HTTPClient) CheckAttempt(ctx context.Context, quizID string) (*service.AttemptStatus, error) {
	var status service.AttemptStatus
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/quizzes/%s/check-attempt", quizID), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) LastSubmission(ctx context.Context, quizID string) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/quizzes/%s/last-submission", quizID), nil, &attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", c.userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		msg := payload.Message
		if msg == "" {
			msg = payload.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
