package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "resource not found",
			},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeTransport,
				Message: "request failed",
				Cause:   errors.New("connection refused"),
			},
			want: "request failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"auth", ErrAuth, IsAuth},
		{"unauthenticated", Unauthenticated("no token"), IsUnauthenticated},
		{"forbidden", Forbidden("admin only"), IsForbidden},
		{"not found", NotFound("missing"), IsNotFound},
		{"validation", Validation("bad"), IsValidation},
		{"transport", Transport(errors.New("timeout")), IsTransport},
		{"unknown", &AppError{Code: ErrCodeUnknown, Message: "teapot"}, IsUnknown},
		{"wrapped with fmt", fmt.Errorf("sync stats: %w", Forbidden("no")), IsForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
		})
	}
	assert.False(t, IsForbidden(errors.New("plain")))
}

func TestErrAuthCarriesNoDetail(t *testing.T) {
	assert.Equal(t, "authentication failed", ErrAuth.Error())
	assert.NoError(t, ErrAuth.Unwrap())
	assert.ErrorIs(t, fmt.Errorf("login: %w", ErrAuth), ErrAuth)
	assert.NotErrorIs(t, Validation("x"), ErrAuth)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("call: %w", Wrap(errors.New("boom"), ErrCodeNotFound, "slip not found"))
	assert.ErrorIs(t, err, &AppError{Code: ErrCodeNotFound})
	assert.NotErrorIs(t, err, &AppError{Code: ErrCodeForbidden})
}

func TestSurfaceKeepsCode(t *testing.T) {
	inner := Validationf("unknown employee %s", "u9")
	err := Surface(inner, "Failed to send slip. Check Employee ID.")

	assert.True(t, IsValidation(err))
	assert.Equal(t, "Failed to send slip. Check Employee ID.", UserMessage(err))
	assert.ErrorIs(t, err, inner)

	plain := Surface(errors.New("disk full"), "Failed")
	assert.Equal(t, ErrCodeUnknown, plain.Code)
	assert.Nil(t, Surface(nil, "unused"))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Something went wrong", UserMessage(errors.New("raw")))
	assert.Equal(t, "admin only", UserMessage(fmt.Errorf("x: %w", Forbidden("admin only"))))
}

func TestGetField(t *testing.T) {
	assert.Equal(t, "amount", GetField(ValidationField("amount", "negative")))
	assert.Equal(t, "", GetField(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
}
