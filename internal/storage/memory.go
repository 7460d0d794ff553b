package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/innobridge/platform/internal/models"
)

// nowFunc is swapped out by tests that need a fixed clock.
var nowFunc = time.Now

// MemoryRepository implements Repository with in-process maps. It backs the
// test suite and the "memory" database driver for local development.
type MemoryRepository struct {
	mu         sync.RWMutex
	principals map[string]*models.Principal
	emails     map[string]string // email -> principal id
	challenges map[string]*models.Challenge
	proposals  map[string]*models.Proposal
	seq        map[string]int64 // record id -> insertion order
	nextSeq    int64
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		principals: make(map[string]*models.Principal),
		emails:     make(map[string]string),
		challenges: make(map[string]*models.Challenge),
		proposals:  make(map[string]*models.Proposal),
		seq:        make(map[string]int64),
	}
}

func (r *MemoryRepository) track(id string) {
	r.nextSeq++
	r.seq[id] = r.nextSeq
}

// --- Principals ---

func (r *MemoryRepository) CreatePrincipal(ctx context.Context, p *models.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.emails[p.Email]; exists {
		return ErrEmailTaken
	}

	cp := *p
	r.principals[p.ID] = &cp
	r.emails[p.Email] = p.ID
	r.track(p.ID)
	return nil
}

func (r *MemoryRepository) GetPrincipal(ctx context.Context, id string) (*models.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.principals[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) GetPrincipalByEmail(ctx context.Context, email string) (*models.Principal, error) {
	r.mu.RLock()
	id, ok := r.emails[email]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetPrincipal(ctx, id)
}

// --- Challenges ---

func (r *MemoryRepository) CreateChallenge(ctx context.Context, c *models.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *c
	r.challenges[c.ID] = &cp
	r.track(c.ID)
	return nil
}

func (r *MemoryRepository) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryRepository) ListChallenges(ctx context.Context, filters models.ChallengeFilters) ([]*models.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Challenge
	for _, c := range r.challenges {
		if filters.OwnerID != "" && c.OwnerID != filters.OwnerID {
			continue
		}
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}

	r.sortNewestFirst(out)

	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return nil, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}

	return out, nil
}

// sortNewestFirst orders by created_at descending, falling back to insertion
// order so records created within the same clock tick stay deterministic.
func (r *MemoryRepository) sortNewestFirst(challenges []*models.Challenge) {
	sort.SliceStable(challenges, func(i, j int) bool {
		if challenges[i].CreatedAt.Equal(challenges[j].CreatedAt) {
			return r.seq[challenges[i].ID] > r.seq[challenges[j].ID]
		}
		return challenges[i].CreatedAt.After(challenges[j].CreatedAt)
	})
}

func (r *MemoryRepository) CloseChallenge(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.challenges[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = models.ChallengeClosed
	return nil
}

func (r *MemoryRepository) GetExpiredChallenges(ctx context.Context) ([]*models.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Challenge
	for _, c := range r.challenges {
		if c.Status == models.ChallengeOpen && c.Deadline.Before(nowFunc()) {
			cp := *c
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Deadline.Before(out[j].Deadline)
	})

	return out, nil
}

// --- Proposals ---

func (r *MemoryRepository) CreateProposal(ctx context.Context, p *models.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.proposals {
		if existing.ChallengeID == p.ChallengeID && existing.StartupID == p.StartupID {
			return ErrDuplicateProposal
		}
	}

	cp := *p
	r.proposals[p.ID] = &cp
	r.track(p.ID)
	return nil
}

func (r *MemoryRepository) GetProposal(ctx context.Context, id string) (*models.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.proposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) GetProposalForStartup(ctx context.Context, challengeID, startupID string) (*models.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.proposals {
		if p.ChallengeID == challengeID && p.StartupID == startupID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) ListProposalsByChallenge(ctx context.Context, challengeID string) ([]*models.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Proposal
	for _, p := range r.proposals {
		if p.ChallengeID == challengeID {
			cp := *p
			out = append(out, &cp)
		}
	}

	// Insertion order, oldest first.
	sort.Slice(out, func(i, j int) bool {
		return r.seq[out[i].ID] < r.seq[out[j].ID]
	})

	return out, nil
}

func (r *MemoryRepository) ListProposalsByStartup(ctx context.Context, startupID string) ([]*models.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Proposal
	for _, p := range r.proposals {
		if p.StartupID == startupID {
			cp := *p
			out = append(out, &cp)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return r.seq[out[i].ID] > r.seq[out[j].ID]
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *MemoryRepository) UpdateProposalStatus(ctx context.Context, id string, status models.ProposalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.proposals[id]
	if !ok {
		return ErrNotFound
	}
	if p.Status.IsTerminal() {
		return ErrProposalDecided
	}
	p.Status = status
	return nil
}

// --- Health ---

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
