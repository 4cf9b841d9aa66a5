// AngelaMos | 2026
// repository.go

package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/riff/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	GetListing(ctx context.Context, id string) (*Listing, error)
	VersionPiece(ctx context.Context, versionID string) (string, error)
	List(ctx context.Context, pieceID, versionID string) ([]Listing, error)
	ListInCircles(
		ctx context.Context,
		pieceID, versionID string,
		circleIDs []string,
	) ([]Listing, error)
	UpdateContent(ctx context.Context, id, content string) error
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
		c.id, c.piece_id, c.version_id, c.circle_id, c.author_id,
		c.parent_id, c.content, c.selection_start, c.selection_end,
		c.selected_text, c.created_at, c.updated_at,
		u.username AS author_username,
		u.name AS author_name,
		u.avatar_url AS author_avatar_url
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func (r *repository) Create(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (
			id, piece_id, version_id, circle_id, author_id, parent_id,
			content, selection_start, selection_end, selected_text,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		c.ID,
		c.PieceID,
		c.VersionID,
		c.CircleID,
		c.AuthorID,
		c.ParentID,
		c.Content,
		c.SelectionStart,
		c.SelectionEnd,
		c.SelectedText,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Comment, error) {
	query := `
		SELECT
			id, piece_id, version_id, circle_id, author_id, parent_id,
			content, selection_start, selection_end, selected_text,
			created_at, updated_at
		FROM comments
		WHERE id = ?`

	var c Comment
	err := r.db.GetContext(ctx, &c, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &c, nil
}

func (r *repository) GetListing(ctx context.Context, id string) (*Listing, error) {
	query := listingSelect + ` WHERE c.id = ?`

	var l Listing
	err := r.db.GetContext(ctx, &l, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment listing: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment listing: %w", err)
	}

	return &l, nil
}

// VersionPiece returns the id of the piece a version belongs to.
func (r *repository) VersionPiece(
	ctx context.Context,
	versionID string,
) (string, error) {
	query := `SELECT piece_id FROM piece_versions WHERE id = ?`

	var pieceID string
	err := r.db.GetContext(ctx, &pieceID, r.db.Rebind(query), versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get version piece: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get version piece: %w", err)
	}

	return pieceID, nil
}

func (r *repository) List(
	ctx context.Context,
	pieceID, versionID string,
) ([]Listing, error) {
	query := listingSelect + `
		WHERE c.piece_id = ? AND c.version_id = ?
		ORDER BY c.created_at ASC, c.id ASC`

	listings := []Listing{}
	if err := r.db.SelectContext(
		ctx,
		&listings,
		r.db.Rebind(query),
		pieceID,
		versionID,
	); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return listings, nil
}

func (r *repository) ListInCircles(
	ctx context.Context,
	pieceID, versionID string,
	circleIDs []string,
) ([]Listing, error) {
	listings := []Listing{}
	if len(circleIDs) == 0 {
		return listings, nil
	}

	query, args, err := core.In(r.db, listingSelect+`
		WHERE c.piece_id = ? AND c.version_id = ? AND c.circle_id IN (?)
		ORDER BY c.created_at ASC, c.id ASC`, pieceID, versionID, circleIDs)
	if err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("list circle comments: %w", err)
	}

	return listings, nil
}

func (r *repository) UpdateContent(ctx context.Context, id, content string) error {
	query := `UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(query),
		content,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	return expectAffected(result, "update comment")
}

// Delete removes the comment; replies go with it through parent_id's
// cascade.
func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM comments WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	return expectAffected(result, "delete comment")
}

func expectAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
