package storage

import (
	"context"
	"errors"

	"github.com/innobridge/platform/internal/models"
)

// Sentinel errors surfaced by every Repository implementation.
var (
	ErrNotFound          = errors.New("record not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrDuplicateProposal = errors.New("proposal already submitted for this challenge")
	ErrProposalDecided   = errors.New("proposal already decided")
)

// Repository defines the interface for marketplace persistence
type Repository interface {
	// Principals
	CreatePrincipal(ctx context.Context, p *models.Principal) error
	GetPrincipal(ctx context.Context, id string) (*models.Principal, error)
	GetPrincipalByEmail(ctx context.Context, email string) (*models.Principal, error)

	// Challenges
	CreateChallenge(ctx context.Context, c *models.Challenge) error
	GetChallenge(ctx context.Context, id string) (*models.Challenge, error)
	ListChallenges(ctx context.Context, filters models.ChallengeFilters) ([]*models.Challenge, error)
	CloseChallenge(ctx context.Context, id string) error
	GetExpiredChallenges(ctx context.Context) ([]*models.Challenge, error)

	// Proposals
	CreateProposal(ctx context.Context, p *models.Proposal) error
	GetProposal(ctx context.Context, id string) (*models.Proposal, error)
	GetProposalForStartup(ctx context.Context, challengeID, startupID string) (*models.Proposal, error)
	ListProposalsByChallenge(ctx context.Context, challengeID string) ([]*models.Proposal, error)
	ListProposalsByStartup(ctx context.Context, startupID string) ([]*models.Proposal, error)
	// UpdateProposalStatus transitions a pending proposal to a terminal
	// status. A decided proposal is never overwritten; such calls return
	// ErrProposalDecided.
	UpdateProposalStatus(ctx context.Context, id string, status models.ProposalStatus) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
