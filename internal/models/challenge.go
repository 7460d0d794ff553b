package models

import (
	"time"
)

// ChallengeStatus represents the lifecycle state of a challenge.
type ChallengeStatus string

const (
	ChallengeOpen   ChallengeStatus = "open"
	ChallengeClosed ChallengeStatus = "closed"
)

// Challenge is a problem statement posted by an industry principal.
// OwnerName is denormalized at creation time so listings render without a join.
type Challenge struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	OwnerName       string          `json:"owner_name,omitempty"`
	Title           string          `json:"title"`
	Domain          string          `json:"domain"`
	Description     string          `json:"description"`
	ExpectedOutcome string          `json:"expected_outcome"`
	Budget          string          `json:"budget,omitempty"`
	Deadline        time.Time       `json:"deadline"`
	Status          ChallengeStatus `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// IsPastDeadline reports whether the submission deadline has passed.
func (c *Challenge) IsPastDeadline(now time.Time) bool {
	return now.After(c.Deadline)
}

// CreateChallengeRequest represents a challenge creation request.
type CreateChallengeRequest struct {
	Title           string `json:"title"`
	Domain          string `json:"domain"`
	Description     string `json:"description"`
	ExpectedOutcome string `json:"expected_outcome"`
	Budget          string `json:"budget,omitempty"`
	Deadline        string `json:"deadline"` // YYYY-MM-DD
}

// ChallengeFilters narrows challenge listings at the store level.
type ChallengeFilters struct {
	OwnerID string
	Status  ChallengeStatus
	Limit   int
	Offset  int
}
