package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_KindOf(t *testing.T) {
	//Arrange
	cause := errors.New("dial tcp: timeout")

	//Act & Assert
	assert.Equal(t, KindConflict, KindOf(Conflict("email already exists")))
	assert.Equal(t, KindExternal, KindOf(External("failed to create user", cause)))
	assert.Equal(t, KindExternal, KindOf(cause), "unclassified errors default to external")
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("handler: %w", Forbidden("nope"))), "kind survives wrapping")
}

func Test_Message_HidesInternals(t *testing.T) {
	//Arrange
	cause := errors.New("pq: connection refused")

	//Act & Assert
	assert.Equal(t, "failed to create user", Message(External("failed to create user", cause)))
	assert.Equal(t, "Internal server error", Message(cause), "raw errors must never leak to responses")
}

func Test_Error_Unwrap(t *testing.T) {
	//Arrange
	cause := errors.New("pq: connection refused")
	err := External("failed to create user", cause)

	//Act & Assert
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to create user: pq: connection refused", err.Error())
	assert.Equal(t, "email already exists", Conflict("email already exists").Error())
}

func Test_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("email is required"), http.StatusBadRequest},
		{"conflict", Conflict("email already exists"), http.StatusConflict},
		{"unauthorized", Unauthorized("no administrative standing"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not permitted"), http.StatusForbidden},
		{"not found", NotFound("user not found"), http.StatusNotFound},
		{"external", External("cognito call failed", errors.New("throttled")), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}
