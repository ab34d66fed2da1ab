package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructors(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewInvalidTransition("resolve", "waiting_approval"), CodeInvalidTransition, http.StatusConflict},
		{NewUnauthorized("not the assignee"), CodeUnauthorized, http.StatusForbidden},
		{NewUnauthenticated("missing token"), CodeUnauthenticated, http.StatusUnauthorized},
		{NewValidationFailed("title is required", nil), CodeValidationFailed, http.StatusBadRequest},
		{NewNotFound("ticket"), CodeNotFound, http.StatusNotFound},
		{NewConcurrentModification("ticket"), CodeConcurrentModification, http.StatusConflict},
		{NewInternalError(errors.New("boom")), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			domainErr := ToDomainError(tc.err)
			require.NotNil(t, domainErr)
			assert.Equal(t, tc.code, domainErr.Code)
			assert.Equal(t, tc.status, domainErr.HTTPStatus)
		})
	}
}

func TestInvalidTransitionDetails(t *testing.T) {
	err := NewInvalidTransition("close", "in_progress")
	domainErr := ToDomainError(err)
	assert.Equal(t, "close", domainErr.Details["action"])
	assert.Equal(t, "in_progress", domainErr.Details["from_status"])
}

func TestHasCode(t *testing.T) {
	err := NewConcurrentModification("ticket")
	assert.True(t, HasCode(err, CodeConcurrentModification))
	assert.False(t, HasCode(err, CodeNotFound))

	wrapped := fmt.Errorf("applying transition: %w", err)
	assert.True(t, HasCode(wrapped, CodeConcurrentModification))

	assert.False(t, HasCode(errors.New("plain"), CodeInternalError))
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	domainErr := ToDomainError(errors.New("connection refused"))
	assert.Equal(t, CodeInternalError, domainErr.Code)
	assert.ErrorContains(t, domainErr, "connection refused")

	assert.Nil(t, ToDomainError(nil))
}
