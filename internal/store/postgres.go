package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contentops/internal/models"
	"contentops/migrations"
)

// Postgres is the remote, multi-client backend. It is authoritative whenever
// it is reachable.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres creates a connection pool and verifies connectivity.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

// RunMigrations runs all embedded SQL migrations.
func (p *Postgres) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.Pool.Close()
}

const suggestionColumns = `
	id, article_id, author_id, author_name, author_email, author_avatar,
	original_content, new_content, diff, status, comments,
	created_at, updated_at, approved_at, rejected_at
`

// Create inserts a new suggestion; the id is server-assigned.
func (p *Postgres) Create(ctx context.Context, s *models.Suggestion) (string, error) {
	diffJSON, err := json.Marshal(s.Diff)
	if err != nil {
		return "", fmt.Errorf("encode diff: %w", err)
	}
	comments := s.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	commentsJSON, err := json.Marshal(comments)
	if err != nil {
		return "", fmt.Errorf("encode comments: %w", err)
	}

	query := `
		INSERT INTO suggestions (
			article_id, author_id, author_name, author_email, author_avatar,
			original_content, new_content, diff, status, comments
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10::jsonb)
		RETURNING id, created_at, updated_at
	`
	var id uuid.UUID
	err = p.Pool.QueryRow(ctx, query,
		s.ArticleID,
		s.Author.ID,
		s.Author.Name,
		s.Author.Email,
		s.Author.Avatar,
		s.OriginalContent,
		s.NewContent,
		diffJSON,
		models.StatusPending,
		commentsJSON,
	).Scan(&id, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Query returns an article's suggestions ordered by creation time, newest
// first.
func (p *Postgres) Query(ctx context.Context, articleID string) ([]models.Suggestion, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT `+suggestionColumns+`
		FROM suggestions
		WHERE article_id = $1
		ORDER BY created_at DESC
	`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Suggestion{}
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// Get retrieves a single suggestion by id. Ids that are not UUIDs cannot
// exist in this backend and report not found without a round trip.
func (p *Postgres) Get(ctx context.Context, id string) (*models.Suggestion, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSuggestionNotFound
	}

	row := p.Pool.QueryRow(ctx, `
		SELECT `+suggestionColumns+`
		FROM suggestions
		WHERE id = $1
	`, uid)
	s, err := scanSuggestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSuggestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateStatus applies a review transition, stamping updated_at and the
// matching terminal timestamp.
func (p *Postgres) UpdateStatus(ctx context.Context, id string, ch StatusChange) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrSuggestionNotFound
	}

	var query string
	switch ch.Status {
	case models.StatusApproved:
		query = `UPDATE suggestions SET status = $1, approved_at = $2, updated_at = $2 WHERE id = $3`
	case models.StatusRejected:
		query = `UPDATE suggestions SET status = $1, rejected_at = $2, updated_at = $2 WHERE id = $3`
	default:
		query = `UPDATE suggestions SET status = $1, updated_at = $2 WHERE id = $3`
	}

	result, err := p.Pool.Exec(ctx, query, ch.Status, ch.At, uid)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSuggestionNotFound
	}
	return nil
}

// AppendComment appends atomically with a jsonb array concatenation, so
// concurrent appends from different clients interleave without loss.
func (p *Postgres) AppendComment(ctx context.Context, id string, c models.Comment) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrSuggestionNotFound
	}

	commentJSON, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode comment: %w", err)
	}

	result, err := p.Pool.Exec(ctx, `
		UPDATE suggestions
		SET comments = comments || $2::jsonb, updated_at = $3
		WHERE id = $1
	`, uid, commentJSON, c.CreatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSuggestionNotFound
	}
	return nil
}

func scanSuggestion(row pgx.Row) (*models.Suggestion, error) {
	var (
		s            models.Suggestion
		id           uuid.UUID
		diffJSON     []byte
		commentsJSON []byte
	)
	err := row.Scan(
		&id, &s.ArticleID, &s.Author.ID, &s.Author.Name, &s.Author.Email, &s.Author.Avatar,
		&s.OriginalContent, &s.NewContent, &diffJSON, &s.Status, &commentsJSON,
		&s.CreatedAt, &s.UpdatedAt, &s.ApprovedAt, &s.RejectedAt,
	)
	if err != nil {
		return nil, err
	}
	s.ID = id.String()

	if err := json.Unmarshal(diffJSON, &s.Diff); err != nil {
		return nil, fmt.Errorf("decode diff: %w", err)
	}
	if err := json.Unmarshal(commentsJSON, &s.Comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	if s.Comments == nil {
		s.Comments = []models.Comment{}
	}
	return &s, nil
}
