package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/innobridge/platform/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint violation on
// the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

// --- Principals ---

// CreatePrincipal inserts a new account record
func (r *PostgresRepository) CreatePrincipal(ctx context.Context, p *models.Principal) error {
	query := `
		INSERT INTO principals (id, email, password_hash, display_name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Email,
		p.PasswordHash,
		p.DisplayName,
		string(p.Role),
		p.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "principals_email_key") {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create principal: %w", err)
	}

	return nil
}

// GetPrincipal retrieves a principal by ID
func (r *PostgresRepository) GetPrincipal(ctx context.Context, id string) (*models.Principal, error) {
	return r.getPrincipal(ctx, "id", id)
}

// GetPrincipalByEmail retrieves a principal by email
func (r *PostgresRepository) GetPrincipalByEmail(ctx context.Context, email string) (*models.Principal, error) {
	return r.getPrincipal(ctx, "email", email)
}

func (r *PostgresRepository) getPrincipal(ctx context.Context, field, value string) (*models.Principal, error) {
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, display_name, role, created_at
		FROM principals
		WHERE %s = $1
	`, field)

	var p models.Principal
	var roleStr string

	err := r.pool.QueryRow(ctx, query, value).Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.DisplayName,
		&roleStr,
		&p.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get principal: %w", err)
	}

	p.Role = models.Role(roleStr)
	return &p, nil
}

// --- Challenges ---

// CreateChallenge inserts a new challenge record
func (r *PostgresRepository) CreateChallenge(ctx context.Context, c *models.Challenge) error {
	query := `
		INSERT INTO challenges (id, owner_id, owner_name, title, domain, description, expected_outcome, budget, deadline, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.OwnerID,
		nullString(c.OwnerName),
		c.Title,
		c.Domain,
		c.Description,
		c.ExpectedOutcome,
		nullString(c.Budget),
		c.Deadline,
		string(c.Status),
		c.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}

	return nil
}

// GetChallenge retrieves a challenge by ID
func (r *PostgresRepository) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	query := `
		SELECT id, owner_id, owner_name, title, domain, description, expected_outcome, budget, deadline, status, created_at
		FROM challenges
		WHERE id = $1
	`

	c, err := scanChallenge(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	return c, nil
}

// ListChallenges returns challenges matching filters, newest first
func (r *PostgresRepository) ListChallenges(ctx context.Context, filters models.ChallengeFilters) ([]*models.Challenge, error) {
	query := `
		SELECT id, owner_id, owner_name, title, domain, description, expected_outcome, budget, deadline, status, created_at
		FROM challenges
		WHERE 1=1
	`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.OwnerID != "" {
		query += fmt.Sprintf(" AND owner_id = $%d", argNum)
		args = append(args, filters.OwnerID)
		argNum++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*models.Challenge

	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenges: %w", err)
	}

	return challenges, nil
}

// CloseChallenge marks an open challenge as closed
func (r *PostgresRepository) CloseChallenge(ctx context.Context, id string) error {
	query := `UPDATE challenges SET status = 'closed' WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to close challenge: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetExpiredChallenges returns open challenges whose deadline has passed
func (r *PostgresRepository) GetExpiredChallenges(ctx context.Context) ([]*models.Challenge, error) {
	query := `
		SELECT id, owner_id, owner_name, title, domain, description, expected_outcome, budget, deadline, status, created_at
		FROM challenges
		WHERE status = 'open'
		  AND deadline < NOW()
		ORDER BY deadline ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*models.Challenge

	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}

	return challenges, rows.Err()
}

// scanChallenge reads one challenge row from a pgx row scanner.
func scanChallenge(row pgx.Row) (*models.Challenge, error) {
	var c models.Challenge
	var ownerName, budget sql.NullString
	var statusStr string

	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&ownerName,
		&c.Title,
		&c.Domain,
		&c.Description,
		&c.ExpectedOutcome,
		&budget,
		&c.Deadline,
		&statusStr,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.OwnerName = ownerName.String
	c.Budget = budget.String
	c.Status = models.ChallengeStatus(statusStr)
	return &c, nil
}

// --- Proposals ---

// CreateProposal inserts a new proposal. The (challenge_id, startup_id) pair
// is unique at the store level; a second submission from the same startup
// returns ErrDuplicateProposal regardless of request interleaving.
func (r *PostgresRepository) CreateProposal(ctx context.Context, p *models.Proposal) error {
	query := `
		INSERT INTO proposals (id, challenge_id, challenge_title, startup_id, startup_name, startup_email, content, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.ChallengeID,
		nullString(p.ChallengeTitle),
		p.StartupID,
		nullString(p.StartupName),
		nullString(p.StartupEmail),
		p.Content,
		string(p.Status),
		p.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "proposals_challenge_startup_key") {
			return ErrDuplicateProposal
		}
		return fmt.Errorf("failed to create proposal: %w", err)
	}

	return nil
}

// GetProposal retrieves a proposal by ID
func (r *PostgresRepository) GetProposal(ctx context.Context, id string) (*models.Proposal, error) {
	query := `
		SELECT id, challenge_id, challenge_title, startup_id, startup_name, startup_email, content, status, created_at
		FROM proposals
		WHERE id = $1
	`

	p, err := scanProposal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	return p, nil
}

// GetProposalForStartup retrieves the proposal a startup submitted for a
// challenge, or ErrNotFound if none exists
func (r *PostgresRepository) GetProposalForStartup(ctx context.Context, challengeID, startupID string) (*models.Proposal, error) {
	query := `
		SELECT id, challenge_id, challenge_title, startup_id, startup_name, startup_email, content, status, created_at
		FROM proposals
		WHERE challenge_id = $1 AND startup_id = $2
	`

	p, err := scanProposal(r.pool.QueryRow(ctx, query, challengeID, startupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	return p, nil
}

// ListProposalsByChallenge returns all proposals for a challenge in
// insertion order
func (r *PostgresRepository) ListProposalsByChallenge(ctx context.Context, challengeID string) ([]*models.Proposal, error) {
	return r.listProposals(ctx, "challenge_id", challengeID, "created_at ASC")
}

// ListProposalsByStartup returns all proposals by a startup, newest first
func (r *PostgresRepository) ListProposalsByStartup(ctx context.Context, startupID string) ([]*models.Proposal, error) {
	return r.listProposals(ctx, "startup_id", startupID, "created_at DESC")
}

func (r *PostgresRepository) listProposals(ctx context.Context, field, value, order string) ([]*models.Proposal, error) {
	query := fmt.Sprintf(`
		SELECT id, challenge_id, challenge_title, startup_id, startup_name, startup_email, content, status, created_at
		FROM proposals
		WHERE %s = $1
		ORDER BY %s
	`, field, order)

	rows, err := r.pool.Query(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*models.Proposal

	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}

	return proposals, nil
}

// UpdateProposalStatus transitions a pending proposal to accepted or
// rejected. The status guard lives in the WHERE clause so a concurrent
// second decision loses cleanly instead of overwriting the first.
func (r *PostgresRepository) UpdateProposalStatus(ctx context.Context, id string, status models.ProposalStatus) error {
	query := `UPDATE proposals SET status = $2 WHERE id = $1 AND status = 'pending'`

	result, err := r.pool.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update proposal status: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing row from a decided one.
		p, err := r.GetProposal(ctx, id)
		if err != nil {
			return err
		}
		if p.Status.IsTerminal() {
			return ErrProposalDecided
		}
		return fmt.Errorf("proposal %s not updated", id)
	}

	return nil
}

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	var challengeTitle, startupName, startupEmail sql.NullString
	var statusStr string

	err := row.Scan(
		&p.ID,
		&p.ChallengeID,
		&challengeTitle,
		&p.StartupID,
		&startupName,
		&startupEmail,
		&p.Content,
		&statusStr,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ChallengeTitle = challengeTitle.String
	p.StartupName = startupName.String
	p.StartupEmail = startupEmail.String
	p.Status = models.ProposalStatus(statusStr)
	return &p, nil
}

// nullString maps "" to SQL NULL for optional text columns.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
