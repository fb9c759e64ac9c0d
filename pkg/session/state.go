package session

import (
	"fmt"

	"github.com/marcos777-ux/Newsick-public/pkg/authsdk"
	"github.com/marcos777-ux/Newsick-public/pkg/idx"
)

// Phase is the tag of the session state union.
type Phase int

const (
	Unauthenticated Phase = iota
	Authenticating
	UsernameRequired
	Authenticated
	Failed
)

func (p Phase) String() string {
	switch p {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case UsernameRequired:
		return "username_required"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Operation names the gateway call a state relates to.
type Operation string

const (
	OperationLogin    Operation = "login"
	OperationRegister Operation = "register"
)

// State is a snapshot of the session. Which fields are set depends on Phase:
//
//	Authenticating    Operation, AttemptID, Identifier
//	UsernameRequired  Identifier
//	Authenticated     Token, Identifier
//	Failed            Err, Fallback, Operation (Identifier while registering)
//
// Everything else is the zero value.
type State struct {
	Phase Phase

	// Token is the opaque gateway token, only in Authenticated.
	Token string

	// Err is one of the authsdk error types, only in Failed.
	Err error

	// Fallback is where a Failed session goes on the next user action:
	// Unauthenticated, or UsernameRequired when finishing a registration
	// failed and the first step can be kept.
	Fallback Phase

	// Operation is the call in flight (Authenticating) or the call that
	// failed (Failed).
	Operation Operation

	// Identifier is the normalised email or username, for display.
	Identifier string

	// AttemptID identifies the in-flight request and is sent to the gateway
	// as its request id.
	AttemptID idx.ID
}

// Loading reports whether a request is in flight, i.e. show a spinner.
func (s State) Loading() bool { return s.Phase == Authenticating }

// IsAuthenticated reports whether the session holds a token.
func (s State) IsAuthenticated() bool { return s.Phase == Authenticated }

// CanSubmit reports whether a form submit would be accepted.
func (s State) CanSubmit() bool {
	return s.Phase != Authenticating && s.Phase != Authenticated
}

// Message is the display string for a Failed state, empty otherwise.
func (s State) Message() string {
	if s.Phase != Failed {
		return ""
	}
	return authsdk.DisplayMessage(s.Err)
}

// resolved is the phase the next user action starts from. Failed is
// transient so it resolves to its fallback.
func (s State) resolved() Phase {
	if s.Phase == Failed {
		return s.Fallback
	}
	return s.Phase
}

func (s State) String() string {
	switch s.Phase {
	case Failed:
		return fmt.Sprintf("failed(%s)", s.Message())
	case Authenticating:
		return fmt.Sprintf("authenticating(%s)", s.Operation)
	default:
		return s.Phase.String()
	}
}
