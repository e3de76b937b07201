package http

import (
	"errors"
	"net/http"

	"conti/internal/auth"
	"conti/internal/core"
	"conti/internal/services"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
	Currency string `json:"currency" validate:"omitempty,currency"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// session returns the authenticated session; requireAuth guarantees it
// is present on every route that reaches a handler calling this.
func (s *Server) session(r *http.Request) auth.Session {
	session, _ := auth.SessionFrom(r.Context())
	return session
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	user, err := s.deps.Auth.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Currency: core.Currency(req.Currency),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).Body(user).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	token, user, err := s.deps.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			// No challenge header here: credentials were presented,
			// they were just wrong.
			ErrorResponse(http.StatusUnauthorized, "invalid username or password").Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Login failed", "error", err)
		WriteError(w, err)
		return
	}

	NewJSONResponse().Body(map[string]any{
		"token": token,
		"user":  user,
	}).Write(w)
}

// handleLogout exists so clients have a uniform endpoint to call.
// Tokens are stateless, so the discard happens client-side.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{"status": "ok"}).Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.Auth.Profile(r.Context(), s.session(r).UserID)
	if err != nil {
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(user).Write(w)
}
