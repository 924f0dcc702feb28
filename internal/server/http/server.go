// Package httpserver exposes the authentication HTTP API.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/service"
)

// Server wires the auth service into HTTP handlers.
type Server struct {
	auth service.AuthService
	log  *zap.Logger
}

// New constructs a Server with injected dependencies.
func New(auth service.AuthService, log *zap.Logger) *Server {
	return &Server{auth: auth, log: log}
}

// Router builds the chi router with middleware and all auth routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(Logging(s.log))
	r.Use(BearerToken)

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Get("/verify", s.handleVerify)
	r.Post("/renew", s.handleRenew)
	r.Post("/logout", s.handleLogout)
	r.Delete("/account", s.handleDeleteAccount)
	r.Get("/username-available", s.handleUsernameAvailable)

	return r
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.ErrInvalidArgument)
		return
	}
	c, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{
		"user_id":  c.ID.String(),
		"username": c.Username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.ErrInvalidArgument)
		return
	}
	issued, err := s.auth.Login(r.Context(), req.Username, req.Password, r.RemoteAddr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	tok, ok := TokenFromCtx(r.Context())
	if !ok {
		s.writeError(w, errs.ErrNotAuthorized)
		return
	}
	claims, err := s.auth.Verify(r.Context(), tok)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, claims)
}

func (s *Server) handleRenew(w http.ResponseWriter, r *http.Request) {
	tok, ok := TokenFromCtx(r.Context())
	if !ok {
		s.writeError(w, errs.ErrNotAuthorized)
		return
	}
	until, err := s.auth.Renew(r.Context(), tok)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{Token: tok, ExpiresAt: until})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	tok, ok := TokenFromCtx(r.Context())
	if !ok {
		s.writeError(w, errs.ErrNotAuthorized)
		return
	}
	if err := s.auth.Logout(r.Context(), tok); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.ErrInvalidArgument)
		return
	}
	id, err := s.auth.DeleteAccount(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"user_id": id.String()})
}

func (s *Server) handleUsernameAvailable(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		s.writeError(w, errs.ErrInvalidArgument)
		return
	}
	free, err := s.auth.UsernameIsAvailable(r.Context(), username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"available": free})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrInvalidArgument), errors.Is(err, errs.ErrMalformedToken):
		code = http.StatusBadRequest
	case errors.Is(err, errs.ErrNotAuthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotAllowed):
		code = http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyExists):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrRateLimited):
		code = http.StatusTooManyRequests
	}
	if code == http.StatusInternalServerError {
		s.log.Error("internal error", zap.Error(err))
		http.Error(w, "internal", code)
		return
	}
	http.Error(w, err.Error(), code)
}
