package http

import (
	"net/http"

	"github.com/marcos777-ux/Newsick-public/internal/gateway/service"
	"github.com/marcos777-ux/Newsick-public/pkg/authsdk"
	"github.com/marcos777-ux/Newsick-public/pkg/httpx"
	"github.com/marcos777-ux/Newsick-public/pkg/slogx"
)

type ProfileHandler struct {
	Accounts *service.AccountService
}

// ServeHTTP handles GET /api/profile. AuthnMiddleware runs first.
//
//	@Summary		Current profile
//	@Description	Returns the account behind the bearer token.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Profile		"id, email, displayName"
//	@Failure		401	{object}	authsdk.AuthOutcome	"missing, invalid or orphaned token"
//	@Failure		429	{object}	authsdk.AuthOutcome	"rate limited"
//	@Router			/api/profile [get].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.SubjectFromContext(ctx)
	if accountID == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	acc, err := h.Accounts.Profile(ctx, accountID)
	if err != nil {
		status := statusFor(service.ErrorCode(err))
		if status == http.StatusInternalServerError {
			log.Error("failed to load profile", "account_id", accountID, "err", err)
			writeRejected(w, status, msgInternal)
			return
		}
		// Token outlived its account, e.g. after a gateway restart.
		writeRejected(w, http.StatusUnauthorized, "Your session is no longer valid. Please log in again.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.Profile{
		ID:          acc.ID,
		Email:       acc.Email,
		DisplayName: acc.DisplayName,
	})
}
