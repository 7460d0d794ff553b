package models

import (
	"time"
)

// ProposalStatus represents the review state of a proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// IsTerminal returns true once a proposal has been decided.
func (s ProposalStatus) IsTerminal() bool {
	return s == ProposalAccepted || s == ProposalRejected
}

// IsDecision returns true for the two statuses an owner may set.
func (s ProposalStatus) IsDecision() bool {
	return s == ProposalAccepted || s == ProposalRejected
}

// Proposal is a startup's submitted solution against a challenge.
// ChallengeTitle, StartupName and StartupEmail are denormalized at creation
// time so the review and tracking views render without joins.
type Proposal struct {
	ID             string         `json:"id"`
	ChallengeID    string         `json:"challenge_id"`
	ChallengeTitle string         `json:"challenge_title,omitempty"`
	StartupID      string         `json:"startup_id"`
	StartupName    string         `json:"startup_name,omitempty"`
	StartupEmail   string         `json:"startup_email,omitempty"`
	Content        string         `json:"content"`
	Status         ProposalStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
}

// SubmitProposalRequest represents a proposal submission.
type SubmitProposalRequest struct {
	Content string `json:"content"`
}

// DecisionRequest carries an owner's accept/reject decision.
type DecisionRequest struct {
	Status ProposalStatus `json:"status"`
}
