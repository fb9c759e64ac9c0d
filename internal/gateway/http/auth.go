package http

import (
	"net/http"
	"time"

	"github.com/marcos777-ux/Newsick-public/internal/gateway/service"
	"github.com/marcos777-ux/Newsick-public/pkg/authsdk"
	"github.com/marcos777-ux/Newsick-public/pkg/httpx"
	"github.com/marcos777-ux/Newsick-public/pkg/slogx"
	"github.com/samber/oops"
)

const (
	msgMalformedBody = "The request body could not be read."
	msgInternal      = "Something went wrong on our side. Please try again."
	msgRateLimited   = "Too many attempts. Please wait a moment and try again."
)

type AuthHandler struct {
	Accounts *service.AccountService
	Metrics  *Metrics
}

// Login handles POST /api/login.
//
//	@Summary		Log in
//	@Description	Signs in with an email or username. Unknown accounts and wrong passwords get the same answer.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"identifier and secret"
//	@Success		200		{object}	authsdk.AuthOutcome		"success with token"
//	@Failure		400		{object}	authsdk.AuthOutcome		"validation failed"
//	@Failure		401		{object}	authsdk.AuthOutcome		"invalid credentials"
//	@Failure		429		{object}	authsdk.AuthOutcome		"rate limited"
//	@Failure		500		{object}	authsdk.AuthOutcome		"internal error"
//	@Router			/api/login [post].
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeRejected(w, http.StatusBadRequest, msgMalformedBody)
		return
	}

	sess, err := h.Accounts.Login(r.Context(), authsdk.Credentials{
		Identifier: req.Identifier,
		Secret:     req.Secret,
	})
	h.finish(w, r, "login", sess, err)
}

// Register handles POST /api/register.
//
//	@Summary		Register
//	@Description	Creates an account and signs it in. Email and username must be unused, usernames ignore case.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"email, secret and displayName"
//	@Success		200		{object}	authsdk.AuthOutcome		"success with token"
//	@Failure		400		{object}	authsdk.AuthOutcome		"validation failed"
//	@Failure		409		{object}	authsdk.AuthOutcome		"email or username taken"
//	@Failure		429		{object}	authsdk.AuthOutcome		"rate limited"
//	@Failure		500		{object}	authsdk.AuthOutcome		"internal error"
//	@Router			/api/register [post].
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeRejected(w, http.StatusBadRequest, msgMalformedBody)
		return
	}

	sess, err := h.Accounts.Register(r.Context(), authsdk.Credentials{
		Identifier:  req.Identifier,
		Secret:      req.Secret,
		DisplayName: req.DisplayName,
	})
	h.finish(w, r, "register", sess, err)
}

func (h *AuthHandler) finish(w http.ResponseWriter, r *http.Request, op string, sess service.Session, err error) {
	log := slogx.FromContext(r.Context())

	if err != nil {
		code := service.ErrorCode(err)
		status := statusFor(code)

		result := code
		if result == "" {
			result = "error"
		}
		h.Metrics.AuthAttempts.WithLabelValues(op, result).Inc()

		if status == http.StatusInternalServerError {
			log.Error(op+" failed", "err", err)
			writeRejected(w, status, msgInternal)
			return
		}
		log.Info(op+" rejected", "code", code)
		writeRejected(w, status, oops.GetPublic(err, authsdk.DefaultRejectionMessage))
		return
	}

	h.Metrics.AuthAttempts.WithLabelValues(op, "success").Inc()
	log.Info(op+" succeeded", "account_id", sess.Account.ID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.Succeeded(sess.Token))
}

// statusFor maps service error codes onto HTTP statuses.
func statusFor(code string) int {
	switch code {
	case service.CodeValidationFailed:
		return http.StatusBadRequest
	case service.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case service.CodeAccountNotFound:
		return http.StatusNotFound
	case service.CodeAccountExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeRejected(w http.ResponseWriter, status int, msg string) {
	httpx.WriteJSON(w, status, authsdk.Rejected(msg))
}

// denyRateLimited answers limited auth calls in the outcome shape so the
// client shows the message instead of a connection error.
func (m *Metrics) denyRateLimited(w http.ResponseWriter, r *http.Request, _ time.Duration) {
	m.RateLimited.WithLabelValues(r.URL.Path).Inc()
	writeRejected(w, http.StatusTooManyRequests, msgRateLimited)
}
