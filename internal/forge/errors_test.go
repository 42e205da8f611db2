package forge

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v74/github"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{Limit: 60, Remaining: 0, Message: "API rate limit exceeded"}
	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.Contains(t, err.Error(), "0/60")

	withReset := &RateLimitError{
		RetryAfter: time.Now().Add(30 * time.Minute),
		Limit:      60,
		Message:    "API rate limit exceeded",
	}
	assert.Contains(t, withReset.Error(), "retry after")
}

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, IsRateLimitError(&RateLimitError{}))
	assert.True(t, IsRateLimitError(fmt.Errorf("wrapped: %w", &RateLimitError{})))
	assert.False(t, IsRateLimitError(errors.New("other")))
	assert.False(t, IsRateLimitError(nil))
}

func TestTranslate(t *testing.T) {
	resp := func(code int) *http.Response {
		return &http.Response{StatusCode: code, Request: &http.Request{}}
	}

	notFound := &github.ErrorResponse{Response: resp(http.StatusNotFound), Message: "Not Found"}
	assert.ErrorIs(t, translate(notFound), ErrPackageNotFound)

	forbidden := &github.ErrorResponse{Response: resp(http.StatusForbidden), Message: "Forbidden"}
	assert.ErrorIs(t, translate(forbidden), ErrForbidden)

	unauthorized := &github.ErrorResponse{Response: resp(http.StatusUnauthorized), Message: "Bad credentials"}
	assert.ErrorIs(t, translate(unauthorized), ErrForbidden)

	rate := &github.RateLimitError{
		Rate:    github.Rate{Limit: 60, Remaining: 0},
		Message: "API rate limit exceeded",
	}
	assert.True(t, IsRateLimitError(translate(rate)))

	plain := errors.New("network down")
	assert.Equal(t, plain, translate(plain))
	assert.NoError(t, translate(nil))
}
