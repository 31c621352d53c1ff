// ABOUTME: Registration and login handlers for end users
// ABOUTME: Issues HS256 JWTs after bcrypt credential verification

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/denisee27/connectx-be/internal/auth"
	"github.com/denisee27/connectx-be/internal/store"
)

// RegisterRequest is the JSON request body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the JSON request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the JSON shape for user data in auth responses.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResponse is the JSON response for a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	switch {
	case req.Email == "":
		s.sendJSONError(w, http.StatusBadRequest, "email is required")
		return
	case req.Name == "":
		s.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	case len(req.Password) < 8:
		s.sendJSONError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if _, err := s.users.GetUserByEmail(r.Context(), req.Email); err == nil {
		s.sendJSONError(w, http.StatusConflict, "email already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		s.sendServiceError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.sendServiceError(w, err)
		return
	}

	user := &store.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(r.Context(), user); err != nil {
		s.sendServiceError(w, err)
		return
	}

	s.logger.Info("registered user", "user_id", user.ID)
	s.sendJSON(w, http.StatusCreated, UserResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Unknown email and wrong password are indistinguishable to callers.
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.sendServiceError(w, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.sendJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.verifier.Generate(user.ID, s.tokenTTL)
	if err != nil {
		s.sendServiceError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  UserResponse{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}
