package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leap-ai/ozone/internal/model"
	"github.com/leap-ai/ozone/internal/server/middleware"
	"github.com/leap-ai/ozone/internal/service"
	"github.com/leap-ai/ozone/internal/store"
)

// sessionTTL is how long a dashboard login token stays valid.
const sessionTTL = 24 * time.Hour

// Dashboard serves the authenticated site API under /api/v1: login,
// key management, and access-request listings for the current account.
type Dashboard struct {
	keys *service.KeyService
	auth *service.AuthService
	st   *store.Store
	log  *slog.Logger
}

func NewDashboard(keys *service.KeyService, auth *service.AuthService, st *store.Store, log *slog.Logger) *Dashboard {
	return &Dashboard{keys: keys, auth: auth, st: st, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	ExpiresIn int64  `json:"expires_in"`
}

// Login exchanges email/password credentials for a session token.
func (d *Dashboard) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	principal, err := d.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := d.auth.IssueJWT(r.Context(), principal.AccountID, principal.Email, sessionTTL)
	if err != nil {
		d.log.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		AccountID: principal.AccountID,
		Email:     principal.Email,
		ExpiresIn: int64(sessionTTL.Seconds()),
	})
}

type createKeyRequest struct {
	Name string `json:"name"`
}

// issuedKeyResponse carries the one-time plaintext alongside the stored
// key metadata. The plaintext never appears in any other response.
type issuedKeyResponse struct {
	*model.APIKey
	FullKey string `json:"full_key"`
}

// CreateKey issues a new API key for the logged-in account. The response
// is the only place the full key is ever returned.
func (d *Dashboard) CreateKey(w http.ResponseWriter, r *http.Request) {
	session := middleware.Session(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createKeyRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	issued, err := d.keys.Issue(r.Context(), session.AccountID, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		d.log.Error("key issue failed", "account_id", session.AccountID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create API key")
		return
	}

	writeJSON(w, http.StatusCreated, issuedKeyResponse{
		APIKey:  issued.Key,
		FullKey: issued.Plaintext,
	})
}

// ListKeys returns the account's active keys. Hashes never leave the
// store; responses carry only the display prefix.
func (d *Dashboard) ListKeys(w http.ResponseWriter, r *http.Request) {
	session := middleware.Session(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	keys, err := d.keys.List(r.Context(), session.AccountID)
	if err != nil {
		d.log.Error("key list failed", "account_id", session.AccountID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list API keys")
		return
	}

	writeJSON(w, http.StatusOK, model.ListResponse{
		Data: keys,
		Meta: &model.ListMeta{Count: len(keys)},
	})
}

// RevokeKey deactivates one of the account's keys. Revocation is
// permanent; the key row stays for audit but never authenticates again.
func (d *Dashboard) RevokeKey(w http.ResponseWriter, r *http.Request) {
	session := middleware.Session(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	keyID := chi.URLParam(r, "keyID")
	if err := d.keys.Revoke(r.Context(), session.AccountID, keyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "API key not found")
			return
		}
		d.log.Error("key revoke failed", "key_id", keyID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to revoke API key")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"revoked": true, "id": keyID})
}

// ListRequests returns the account's access requests, matched by the
// session email.
func (d *Dashboard) ListRequests(w http.ResponseWriter, r *http.Request) {
	session := middleware.Session(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := clampInt(queryInt(r, "limit", 20), 1, 100)
	reqs, err := d.st.ListAccessRequestsByEmail(r.Context(), session.Email, limit)
	if err != nil {
		d.log.Error("request list failed", "email", session.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list access requests")
		return
	}

	writeJSON(w, http.StatusOK, model.ListResponse{
		Data: reqs,
		Meta: &model.ListMeta{Count: len(reqs)},
	})
}
