package authsdk

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &ValidationError{Field: FieldSecret, Reason: "is required"}, "Password is required"},
		{"validation unknown field", &ValidationError{Field: "pin", Reason: "is required"}, "pin is required"},
		{"rejection verbatim", &RejectionError{StatusCode: 401, Message: "bad credentials"}, "bad credentials"},
		{"rejection without message", &RejectionError{StatusCode: 401}, DefaultRejectionMessage},
		{"transport", &TransportError{Op: "login", Err: errors.New("dial tcp: connection refused")}, ConnectionErrorMessage},
		{"wrapped transport", fmt.Errorf("submit: %w", &TransportError{Op: "login", Err: errors.New("eof")}), ConnectionErrorMessage},
		{"bare deadline", context.DeadlineExceeded, ConnectionErrorMessage},
		{"unknown", errors.New("boom"), UnexpectedErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DisplayMessage(tt.err))
		})
	}
}

func TestTransportErrorTimeout(t *testing.T) {
	t.Parallel()

	err := &TransportError{Op: "login", Err: fmt.Errorf("failed to send request: %w", context.DeadlineExceeded)}
	require.True(t, err.Timeout())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	err = &TransportError{Op: "login", Err: errors.New("connection refused")}
	require.False(t, err.Timeout())
}

func TestOutcomeErr(t *testing.T) {
	t.Parallel()

	ok := Succeeded("T")
	require.NoError(t, ok.Err())
	require.Equal(t, "T", ok.TokenValue())

	no := Rejected("bad credentials")
	no.StatusCode = 401
	err := no.Err()
	require.True(t, IsRejection(err))
	require.Equal(t, "bad credentials", DisplayMessage(err))
	require.Empty(t, no.TokenValue())

	var nilOutcome *AuthOutcome
	require.Empty(t, nilOutcome.MessageValue())
}
