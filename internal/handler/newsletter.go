package handler

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/leap-ai/ozone/internal/model"
	"github.com/leap-ai/ozone/internal/store"
)

// emailPattern is deliberately loose: one @, no whitespace, a dot in the
// domain. Real validation happens when mail actually gets sent.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Site serves the unauthenticated public endpoints: newsletter signup
// and the contact / access-request form.
type Site struct {
	st  *store.Store
	log *slog.Logger
}

func NewSite(st *store.Store, log *slog.Logger) *Site {
	return &Site{st: st, log: log}
}

type subscribeRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

type subscribeResponse struct {
	Subscribed bool              `json:"subscribed"`
	Subscriber *model.Subscriber `json:"subscriber"`
}

// Subscribe handles newsletter signup. A new address returns 201; an
// address already on the list has its row refreshed and returns 200.
func (s *Site) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		writeError(w, http.StatusBadRequest, "Valid email is required")
		return
	}

	source := req.Source
	if source == "" {
		source = "website"
	}

	sub, created, err := s.st.UpsertSubscriber(r.Context(), email, strings.TrimSpace(req.Name), source)
	if err != nil {
		s.log.Error("newsletter subscribe failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, subscribeResponse{Subscribed: true, Subscriber: sub})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
	Type    string `json:"request_type"`
}

// Contact records an access-request form submission.
func (s *Site) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		writeError(w, http.StatusBadRequest, "Valid email is required")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	reqType := req.Type
	if reqType == "" {
		reqType = "api_access"
	}

	ar := &model.AccessRequest{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Company:     strings.TrimSpace(req.Company),
		Message:     strings.TrimSpace(req.Message),
		RequestType: reqType,
	}
	if err := s.st.CreateAccessRequest(r.Context(), ar); err != nil {
		s.log.Error("access request create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to submit request")
		return
	}

	writeJSON(w, http.StatusCreated, ar)
}
