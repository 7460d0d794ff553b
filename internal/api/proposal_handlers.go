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
	"github.com/innobridge/platform/internal/models"
	"github.com/innobridge/platform/internal/storage"
)

func (s *Server) handleSubmitProposal(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	challengeID := chi.URLParam(r, "id")

	var req models.SubmitProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "content is required")
		return
	}

	challenge, err := s.repo.GetChallenge(r.Context(), challengeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "challenge not found")
			return
		}
		slog.Error("failed to get challenge", "error", err, "id", challengeID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit proposal")
		return
	}

	proposal := &models.Proposal{
		ID:             uuid.NewString(),
		ChallengeID:    challenge.ID,
		ChallengeTitle: challenge.Title,
		StartupID:      principal.ID,
		StartupName:    principal.DisplayName,
		StartupEmail:   principal.Email,
		Content:        req.Content,
		Status:         models.ProposalPending,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.CreateProposal(r.Context(), proposal); err != nil {
		if errors.Is(err, storage.ErrDuplicateProposal) {
			respondError(w, http.StatusConflict, "duplicate_proposal", "you have already submitted a proposal for this challenge")
			return
		}
		slog.Error("failed to create proposal", "error", err, "challenge", challengeID, "startup", principal.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit proposal")
		return
	}

	s.hub.Publish(events.TypeProposalSubmitted, proposal)

	respondJSON(w, http.StatusCreated, proposal)
}

func (s *Server) handleDecideProposal(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	proposalID := chi.URLParam(r, "id")

	var req models.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if !req.Status.IsDecision() {
		respondError(w, http.StatusBadRequest, "validation_error", "status must be accepted or rejected")
		return
	}

	proposal, err := s.repo.GetProposal(r.Context(), proposalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "proposal not found")
			return
		}
		slog.Error("failed to get proposal", "error", err, "id", proposalID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update proposal")
		return
	}

	challenge, err := s.repo.GetChallenge(r.Context(), proposal.ChallengeID)
	if err != nil {
		slog.Error("failed to get parent challenge", "error", err, "challenge", proposal.ChallengeID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update proposal")
		return
	}

	// Only the challenge owner decides its proposals.
	if challenge.OwnerID != principal.ID {
		respondError(w, http.StatusForbidden, "forbidden", "")
		return
	}

	if err := s.repo.UpdateProposalStatus(r.Context(), proposalID, req.Status); err != nil {
		if errors.Is(err, storage.ErrProposalDecided) {
			respondError(w, http.StatusConflict, "already_decided", "this proposal has already been decided")
			return
		}
		slog.Error("failed to update proposal status", "error", err, "id", proposalID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update proposal")
		return
	}

	proposal.Status = req.Status

	slog.Info("proposal decided",
		"proposal", proposal.ID,
		"challenge", challenge.ID,
		"status", string(req.Status),
		"by", principal.ID,
	)

	s.hub.Publish(events.TypeProposalDecided, proposal)

	respondJSON(w, http.StatusOK, proposal)
}

func (s *Server) handleMyProposals(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	proposals, err := s.repo.ListProposalsByStartup(r.Context(), principal.ID)
	if err != nil {
		slog.Error("failed to list proposals", "error", err, "startup", principal.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list proposals")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"proposals": proposals,
		"total":     len(proposals),
	})
}
