package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/innobridge/platform/internal/auth"
	"github.com/innobridge/platform/internal/models"
	"github.com/innobridge/platform/internal/storage"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, "validation_error", "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "validation_error", "password must be at least 8 characters")
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "display_name is required")
		return
	}
	if !req.Role.Valid() {
		respondError(w, http.StatusBadRequest, "validation_error", "role must be industry or startup")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create account")
		return
	}

	principal := &models.Principal{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         req.Role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreatePrincipal(r.Context(), principal); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "email_taken", "an account with this email already exists")
			return
		}
		slog.Error("failed to create principal", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create account")
		return
	}

	token, err := s.tokens.Issue(principal.ID)
	if err != nil {
		slog.Error("failed to issue token", "error", err, "principal", principal.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	slog.Info("account created", "principal", principal.ID, "role", string(principal.Role))

	respondJSON(w, http.StatusCreated, models.AuthResponse{
		Token:     token,
		Principal: principal,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	principal, err := s.repo.GetPrincipalByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
			return
		}
		slog.Error("failed to look up principal", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "login failed")
		return
	}

	if !auth.CheckPassword(principal.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
		return
	}

	token, err := s.tokens.Issue(principal.ID)
	if err != nil {
		slog.Error("failed to issue token", "error", err, "principal", principal.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "login failed")
		return
	}

	respondJSON(w, http.StatusOK, models.AuthResponse{
		Token:     token,
		Principal: principal,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	respondJSON(w, http.StatusOK, principal)
}
