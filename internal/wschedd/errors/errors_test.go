package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError(CodeNotFound, "Show not found.", "ScheduleService.GetShow", ErrNotFound)
	assert.Equal(t, "ScheduleService.GetShow: Show not found.", err.Error())
	assert.Equal(t, "Show not found.", (&Error{Message: "Show not found."}).Error())
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		check  func(error) bool
		code   string
		reason string
	}{
		{
			name:   "invalid input",
			err:    Invalid("Device ID is invalid.", "op"),
			check:  IsInvalidInput,
			code:   CodeInvalidInput,
			reason: "Device ID is invalid.",
		},
		{
			name:   "forbidden",
			err:    Forbidden("Permission denied.", "op"),
			check:  IsForbidden,
			code:   CodeForbidden,
			reason: "Permission denied.",
		},
		{
			name:   "wrapped not found",
			err:    fmt.Errorf("loading: %w", NewError(CodeNotFound, "Permission not found.", "op", ErrNotFound)),
			check:  IsNotFound,
			code:   CodeNotFound,
			reason: "Permission not found.",
		},
		{
			name:   "plain error",
			err:    errors.New("pq: connection refused"),
			check:  func(err error) bool { return !IsNotFound(err) && !IsConflict(err) },
			code:   CodeInternal,
			reason: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.Equal(t, tt.code, Code(tt.err))
			assert.Equal(t, tt.reason, Reason(tt.err))
		})
	}
}
