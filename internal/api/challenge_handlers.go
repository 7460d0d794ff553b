package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/innobridge/platform/internal/events"
	"github.com/innobridge/platform/internal/listing"
	"github.com/innobridge/platform/internal/models"
	"github.com/innobridge/platform/internal/storage"
)

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	var req models.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	for field, value := range map[string]string{
		"title":            req.Title,
		"domain":           req.Domain,
		"description":      req.Description,
		"expected_outcome": req.ExpectedOutcome,
		"deadline":         req.Deadline,
	} {
		if strings.TrimSpace(value) == "" {
			respondError(w, http.StatusBadRequest, "validation_error", field+" is required")
			return
		}
	}

	if !s.catalog.Valid(req.Domain) {
		respondError(w, http.StatusBadRequest, "validation_error", "unknown domain: "+req.Domain)
		return
	}

	deadline, err := time.Parse("2006-01-02", req.Deadline)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "deadline must be YYYY-MM-DD")
		return
	}

	challenge := &models.Challenge{
		ID:              uuid.NewString(),
		OwnerID:         principal.ID,
		OwnerName:       principal.DisplayName,
		Title:           req.Title,
		Domain:          req.Domain,
		Description:     req.Description,
		ExpectedOutcome: req.ExpectedOutcome,
		Budget:          req.Budget,
		Deadline:        deadline,
		Status:          models.ChallengeOpen,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.repo.CreateChallenge(r.Context(), challenge); err != nil {
		slog.Error("failed to create challenge", "error", err, "owner", principal.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create challenge")
		return
	}

	s.board.Invalidate(r.Context())
	s.hub.Publish(events.TypeChallengeCreated, challenge)

	respondJSON(w, http.StatusCreated, challenge)
}

func (s *Server) handleListOwnChallenges(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	challenges, err := s.repo.ListChallenges(r.Context(), models.ChallengeFilters{
		OwnerID: principal.ID,
	})
	if err != nil {
		slog.Error("failed to list challenges", "error", err, "owner", principal.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list challenges")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"challenges": challenges,
		"total":      len(challenges),
	})
}

func (s *Server) handleGetOwnChallenge(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	challenge, err := s.repo.GetChallenge(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "challenge not found")
			return
		}
		slog.Error("failed to get challenge", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get challenge")
		return
	}

	// Challenges are public to read on the board; the review view with its
	// proposals is the owner's only.
	if challenge.OwnerID != principal.ID {
		respondError(w, http.StatusNotFound, "not_found", "challenge not found")
		return
	}

	proposals, err := s.repo.ListProposalsByChallenge(r.Context(), id)
	if err != nil {
		slog.Error("failed to list proposals", "error", err, "challenge", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load proposals")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"challenge": challenge,
		"proposals": proposals,
	})
}

// handleBoard serves the startup challenge board: the full collection is
// fetched (through the cache when enabled), then search and domain filters
// run in memory over it.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	challenges, hit := s.board.Get(r.Context())
	if hit {
		// Newest first, regardless of how the cached copy was stored.
		listing.SortNewestFirst(challenges)
	} else {
		filters := models.ChallengeFilters{}
		if s.listing.OpenOnly {
			filters.Status = models.ChallengeOpen
		}

		var err error
		challenges, err = s.repo.ListChallenges(r.Context(), filters)
		if err != nil {
			slog.Error("failed to list challenges", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to load challenges")
			return
		}

		s.board.Set(r.Context(), challenges)
	}

	filtered := listing.Filter(challenges, listing.Query{
		Search: r.URL.Query().Get("search"),
		Domain: r.URL.Query().Get("domain"),
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"challenges": filtered,
		"total":      len(filtered),
	})
}

func (s *Server) handleStartupGetChallenge(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	challenge, err := s.repo.GetChallenge(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "challenge not found")
			return
		}
		slog.Error("failed to get challenge", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get challenge")
		return
	}

	// The pre-check the submit form shows; the store constraint is what
	// actually prevents duplicates.
	alreadySubmitted := false
	if _, err := s.repo.GetProposalForStartup(r.Context(), id, principal.ID); err == nil {
		alreadySubmitted = true
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.Error("failed to check existing proposal", "error", err, "challenge", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to check existing proposal")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"challenge":         challenge,
		"already_submitted": alreadySubmitted,
	})
}
