// Package cleanup runs the deadline sweeper: a periodic worker that closes
// open challenges whose submission deadline has passed.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/innobridge/platform/internal/storage"
)

// BoardInvalidator drops a cached challenge listing after the sweeper closes
// challenges, so the board never serves a closed challenge past a sweep.
type BoardInvalidator interface {
	Invalidate(ctx context.Context)
}

// Cleaner handles periodic closing of expired challenges
type Cleaner struct {
	repo     storage.Repository
	board    BoardInvalidator
	interval time.Duration
}

// NewCleaner creates a new cleanup worker. board may be nil when the board
// cache is disabled.
func NewCleaner(repo storage.Repository, board BoardInvalidator, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &Cleaner{
		repo:     repo,
		board:    board,
		interval: interval,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	slog.Info("deadline sweeper started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("deadline sweeper stopped")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep closes open challenges past their deadline
func (c *Cleaner) sweep(ctx context.Context) {
	slog.Debug("running deadline sweep")

	expired, err := c.repo.GetExpiredChallenges(ctx)
	if err != nil {
		slog.Error("failed to get expired challenges", "error", err)
		return
	}

	if len(expired) == 0 {
		slog.Debug("no expired challenges found")
		return
	}

	slog.Info("found expired challenges", "count", len(expired))

	closed := 0
	for _, ch := range expired {
		if err := c.repo.CloseChallenge(ctx, ch.ID); err != nil {
			slog.Error("failed to close expired challenge",
				"error", err,
				"id", ch.ID,
			)
			continue
		}
		closed++

		slog.Info("closed expired challenge",
			"id", ch.ID,
			"owner", ch.OwnerID,
			"deadline", ch.Deadline,
		)
	}

	if closed > 0 && c.board != nil {
		c.board.Invalidate(ctx)
	}
}
