// AngelaMos | 2026
// repository.go

package prompt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/riff/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Prompt) error
	GetByID(ctx context.Context, id string) (*Prompt, error)
	GetListing(ctx context.Context, id string) (*Listing, error)
	ListByCircle(ctx context.Context, circleID string) ([]Listing, error)
	Update(ctx context.Context, p *Prompt) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const listingSelect = `
	SELECT
		p.id, p.circle_id, p.title, p.description, p.is_freeform,
		p.deadline, p.visibility_rule, p.created_by, p.created_at,
		p.updated_at,
		u.username AS author_username,
		u.name AS author_name,
		(SELECT COUNT(*) FROM piece_shares s WHERE s.prompt_id = p.id)
			AS submission_count
	FROM circle_prompts p
	JOIN users u ON u.id = p.created_by`

func (r *repository) Create(ctx context.Context, p *Prompt) error {
	query := `
		INSERT INTO circle_prompts (
			id, circle_id, title, description, is_freeform, deadline,
			visibility_rule, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		p.ID,
		p.CircleID,
		p.Title,
		p.Description,
		p.IsFreeform,
		p.Deadline,
		p.VisibilityRule,
		p.CreatedBy,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create prompt: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Prompt, error) {
	query := `
		SELECT
			id, circle_id, title, description, is_freeform, deadline,
			visibility_rule, created_by, created_at, updated_at
		FROM circle_prompts
		WHERE id = ?`

	var p Prompt
	err := r.db.GetContext(ctx, &p, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get prompt: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get prompt: %w", err)
	}

	return &p, nil
}

func (r *repository) GetListing(ctx context.Context, id string) (*Listing, error) {
	query := listingSelect + ` WHERE p.id = ?`

	var l Listing
	err := r.db.GetContext(ctx, &l, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get prompt listing: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get prompt listing: %w", err)
	}

	return &l, nil
}

func (r *repository) ListByCircle(
	ctx context.Context,
	circleID string,
) ([]Listing, error) {
	query := listingSelect + `
		WHERE p.circle_id = ?
		ORDER BY p.created_at DESC`

	listings := []Listing{}
	if err := r.db.SelectContext(ctx, &listings, r.db.Rebind(query), circleID); err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	return listings, nil
}

func (r *repository) Update(ctx context.Context, p *Prompt) error {
	query := `
		UPDATE circle_prompts
		SET title = ?, description = ?, is_freeform = ?, deadline = ?,
			visibility_rule = ?, updated_at = ?
		WHERE id = ?`

	p.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		p.Title,
		p.Description,
		p.IsFreeform,
		p.Deadline,
		p.VisibilityRule,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update prompt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update prompt: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update prompt: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM circle_prompts WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete prompt: %w", core.ErrNotFound)
	}

	return nil
}
