// Package session holds the client-side authentication state machine.
//
// A Controller owns exactly one State and is the only thing that changes it.
// Presentation code reads it with State or Subscribe and issues commands:
// SubmitLogin, SubmitRegistrationStart, SubmitRegistrationFinish, Cancel,
// Dismiss and Logout. At most one gateway request is in flight at a time and
// a reply that arrives after the session moved on is dropped.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/marcos777-ux/Newsick-public/pkg/authsdk"
	"github.com/marcos777-ux/Newsick-public/pkg/idx"
)

var (
	// ErrBusy is returned when a submit arrives while a request is in flight.
	ErrBusy = errors.New("session: a request is already in flight")

	// ErrInvalidTransition is returned when a command makes no sense in the
	// current phase, e.g. finishing a registration that was never started.
	ErrInvalidTransition = errors.New("session: operation not valid in current state")

	// ErrClosed is returned by every command after Close.
	ErrClosed = errors.New("session: controller closed")
)

// Gateway is the remote side of the controller. *authsdk.SDKClient
// implements it.
//
// Login and Register return (outcome, nil) for any well-formed reply,
// including success=false, and an error for everything else.
type Gateway interface {
	Login(ctx context.Context, creds authsdk.Credentials) (*authsdk.AuthOutcome, error)
	Register(ctx context.Context, creds authsdk.Credentials) (*authsdk.AuthOutcome, error)
}

// attempt is the handle of one in-flight request. Replacing or clearing
// Controller.inflight is what makes a late reply stale.
type attempt struct {
	id         idx.ID
	op         Operation
	identifier string
	cancel     context.CancelFunc
}

// Controller is the auth session state machine. It is safe for concurrent
// use; all state changes happen under one mutex so there is a single writer.
type Controller struct {
	gateway Gateway
	logger  *slog.Logger
	timeout time.Duration

	base      context.Context
	closeBase context.CancelFunc
	wg        sync.WaitGroup

	mu       sync.Mutex
	state    State
	pending  authsdk.Credentials // first registration step, kept until finished
	inflight *attempt
	subs     map[int]chan State
	nextSub  int
	closed   bool
}

// New creates a Controller in the Unauthenticated phase.
func New(gateway Gateway, opts ...Option) *Controller {
	base, cancel := context.WithCancel(context.Background())

	c := &Controller{
		gateway:   gateway,
		logger:    slog.Default(),
		timeout:   DefaultRequestTimeout,
		base:      base,
		closeBase: cancel,
		state:     State{Phase: Unauthenticated},
		subs:      make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "session")

	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Token returns the session token, or "" when not authenticated.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Token
}

// ============================================================================
// Commands
// ============================================================================

// SubmitLogin starts a login. Empty fields are rejected with a
// *authsdk.ValidationError and leave the state untouched. While a request is
// in flight it returns ErrBusy. Otherwise the session moves to
// Authenticating and exactly one request goes to the gateway; its result
// lands in the state, not in the return value.
func (c *Controller) SubmitLogin(identifier, secret string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked("submit login", Unauthenticated); err != nil {
		return err
	}

	creds := authsdk.Credentials{Identifier: identifier, Secret: secret}.Normalized()
	if err := creds.ValidateLogin(); err != nil {
		return err
	}

	c.pending = authsdk.Credentials{}
	c.dispatchLocked(OperationLogin, creds)
	return nil
}

// SubmitRegistrationStart validates the first registration step. A bad
// email or a short password moves the session to Failed without touching
// the gateway; valid input moves it to UsernameRequired.
func (c *Controller) SubmitRegistrationStart(identifier, secret string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked("start registration", Unauthenticated); err != nil {
		return err
	}

	creds := authsdk.Credentials{Identifier: identifier, Secret: secret}.Normalized()
	if err := creds.ValidateRegistration(); err != nil {
		c.pending = authsdk.Credentials{}
		c.setLocked(State{
			Phase:     Failed,
			Err:       err,
			Fallback:  Unauthenticated,
			Operation: OperationRegister,
		})
		return nil
	}

	c.pending = creds
	c.setLocked(State{Phase: UsernameRequired, Identifier: creds.Identifier})
	return nil
}

// SubmitRegistrationFinish sends the registration with the credentials from
// the first step. Only valid in UsernameRequired (or Failed falling back to
// it). A blank name moves the session to Failed and keeps the first step.
func (c *Controller) SubmitRegistrationFinish(displayName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked("finish registration", UsernameRequired); err != nil {
		return err
	}

	if err := authsdk.ValidateDisplayName(displayName); err != nil {
		c.setLocked(State{
			Phase:      Failed,
			Err:        err,
			Fallback:   UsernameRequired,
			Operation:  OperationRegister,
			Identifier: c.pending.Identifier,
		})
		return nil
	}

	creds := c.pending
	creds.DisplayName = strings.TrimSpace(displayName)
	c.dispatchLocked(OperationRegister, creds)
	return nil
}

// Cancel backs out of Failed, UsernameRequired or Authenticating to
// Unauthenticated. An in-flight request is cancelled and its reply, if it
// still arrives, is ignored. No-op in the other phases.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Phase {
	case Failed, UsernameRequired, Authenticating:
		c.resetLocked("cancel")
	}
}

// Dismiss acknowledges a Failed state and returns to its fallback phase.
// No-op in the other phases.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != Failed {
		return
	}

	next := State{Phase: c.state.Fallback}
	if next.Phase == UsernameRequired {
		next.Identifier = c.pending.Identifier
	} else {
		c.pending = authsdk.Credentials{}
	}
	c.setLocked(next)
}

// Logout drops the token, any error and any pending registration and
// returns to Unauthenticated. Valid from every phase, calling it twice is
// fine.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked("logout")
}

// Close cancels any in-flight request, closes all subscriptions and waits
// for the request goroutine to finish. Commands return ErrClosed afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.state.Phase == Authenticating {
		c.resetLocked("close")
	}
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.mu.Unlock()

	c.closeBase()
	c.wg.Wait()
}

// ============================================================================
// Observation
// ============================================================================

// Subscribe returns a channel that receives the current state right away
// and then every transition. The channel holds only the latest state, a
// slow reader skips intermediate states but never sees an older one after a
// newer one. Call the returned func to unsubscribe; Close also closes it.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// Await blocks until the session is not Authenticating and returns that
// state. Handy for callers without an event loop, like the CLI.
func (c *Controller) Await(ctx context.Context) (State, error) {
	ch, stop := c.Subscribe()
	defer stop()

	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return c.State(), ErrClosed
			}
			if s.Phase != Authenticating {
				return s, nil
			}
		case <-ctx.Done():
			return c.State(), ctx.Err()
		}
	}
}

// ============================================================================
// Internals, all *Locked methods expect c.mu held
// ============================================================================

// checkLocked verifies the session may accept a command that is valid from
// want. Failed counts as its fallback phase.
func (c *Controller) checkLocked(op string, want Phase) error {
	if c.closed {
		return ErrClosed
	}

	phase := c.state.resolved()
	switch {
	case c.state.Phase == Authenticating:
		return ErrBusy
	case phase != want:
		return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, phase)
	}
	return nil
}

// dispatchLocked moves to Authenticating and starts the request goroutine.
func (c *Controller) dispatchLocked(op Operation, creds authsdk.Credentials) {
	ctx, cancel := context.WithTimeout(c.base, c.timeout)
	a := &attempt{
		id:         idx.New(),
		op:         op,
		identifier: creds.Identifier,
		cancel:     cancel,
	}
	c.inflight = a

	c.setLocked(State{
		Phase:      Authenticating,
		Operation:  op,
		Identifier: creds.Identifier,
		AttemptID:  a.id,
	})

	c.wg.Add(1)
	go c.run(authsdk.WithRequestID(ctx, a.id), a, creds)
}

// run performs the gateway call off the caller's goroutine and hands the
// result back to complete.
func (c *Controller) run(ctx context.Context, a *attempt, creds authsdk.Credentials) {
	defer c.wg.Done()
	defer a.cancel()

	var (
		out *authsdk.AuthOutcome
		err error
	)
	switch a.op {
	case OperationRegister:
		out, err = c.gateway.Register(ctx, creds)
	default:
		out, err = c.gateway.Login(ctx, creds)
	}

	switch {
	case err == nil && out == nil:
		err = &authsdk.TransportError{Op: string(a.op), Err: errors.New("gateway returned no outcome")}
	case err == nil && out.Success && out.TokenValue() == "":
		err = &authsdk.TransportError{Op: string(a.op), Err: errors.New("gateway returned no token")}
	case err == nil:
		err = out.Err()
	case errors.Is(err, context.DeadlineExceeded) && !authsdk.IsTransport(err):
		err = &authsdk.TransportError{Op: string(a.op), Err: err}
	}

	c.complete(a, out, err)
}

// complete folds a gateway result into the state, unless the attempt is no
// longer the current one.
func (c *Controller) complete(a *attempt, out *authsdk.AuthOutcome, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.logger.With("attempt_id", a.id.String(), "operation", string(a.op))

	if c.inflight != a {
		log.Debug("discarding stale gateway reply", "error", err)
		return
	}
	c.inflight = nil

	if err != nil {
		fallback := Unauthenticated
		identifier := ""
		if a.op == OperationRegister {
			fallback = UsernameRequired
			identifier = c.pending.Identifier
		} else {
			c.pending = authsdk.Credentials{}
		}

		if authsdk.IsTransport(err) {
			log.Warn("gateway request failed", "error", err)
		} else {
			log.Info("gateway rejected request", "error", err)
		}

		c.setLocked(State{
			Phase:      Failed,
			Err:        err,
			Fallback:   fallback,
			Operation:  a.op,
			Identifier: identifier,
		})
		return
	}

	c.pending = authsdk.Credentials{}
	c.setLocked(State{
		Phase:      Authenticated,
		Token:      out.TokenValue(),
		Identifier: a.identifier,
	})
}

// resetLocked returns to Unauthenticated, dropping everything.
func (c *Controller) resetLocked(reason string) {
	c.cancelInflightLocked()
	c.pending = authsdk.Credentials{}

	if c.state.Phase == Unauthenticated {
		return
	}
	c.logger.Debug("session reset", "reason", reason, "from", c.state.Phase.String())
	c.setLocked(State{Phase: Unauthenticated})
}

func (c *Controller) cancelInflightLocked() {
	if c.inflight == nil {
		return
	}
	c.inflight.cancel()
	c.inflight = nil
}

// setLocked replaces the state and publishes it to subscribers.
func (c *Controller) setLocked(next State) {
	prev := c.state
	c.state = next

	c.logger.Debug("session transition",
		"from", prev.Phase.String(),
		"to", next.Phase.String(),
	)

	for _, ch := range c.subs {
		// Buffer of one, keep only the newest state. We are the only
		// sender and hold the lock, so the send below never blocks.
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}
