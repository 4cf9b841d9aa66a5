// AngelaMos | 2026
// repository.go

package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/riff/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Collection) error
	GetByID(ctx context.Context, id string) (*Collection, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	AddPiece(ctx context.Context, collectionID, pieceID string) error
	RemovePiece(ctx context.Context, collectionID, pieceID string) error
	ListVisibleEntries(ctx context.Context, collectionID, viewerID string) ([]Entry, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Collection) error {
	query := `
		INSERT INTO collections (
			id, owner_id, name, description, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		c.ID,
		c.OwnerID,
		c.Name,
		c.Description,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Collection, error) {
	query := `
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM collections
		WHERE id = ?`

	var c Collection
	err := r.db.GetContext(ctx, &c, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get collection: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}

	return &c, nil
}

func (r *repository) ListByOwner(
	ctx context.Context,
	ownerID string,
) ([]Summary, error) {
	query := `
		SELECT
			c.id, c.owner_id, c.name, c.description, c.created_at,
			c.updated_at,
			(SELECT COUNT(*) FROM collection_pieces cp
				WHERE cp.collection_id = c.id) AS piece_count
		FROM collections c
		WHERE c.owner_id = ?
		ORDER BY c.updated_at DESC`

	summaries := []Summary{}
	if err := r.db.SelectContext(ctx, &summaries, r.db.Rebind(query), ownerID); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	return summaries, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM collections WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}

	return expectAffected(result, "delete collection")
}

func (r *repository) AddPiece(
	ctx context.Context,
	collectionID, pieceID string,
) error {
	query := `
		INSERT INTO collection_pieces (collection_id, piece_id, added_at)
		VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(query),
		collectionID,
		pieceID,
		time.Now().UTC(),
	)
	if core.IsUniqueViolation(err) {
		return fmt.Errorf("add collection piece: %w", core.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("add collection piece: %w", err)
	}

	return r.touch(ctx, collectionID)
}

func (r *repository) RemovePiece(
	ctx context.Context,
	collectionID, pieceID string,
) error {
	query := `
		DELETE FROM collection_pieces
		WHERE collection_id = ? AND piece_id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), collectionID, pieceID)
	if err != nil {
		return fmt.Errorf("remove collection piece: %w", err)
	}

	if err := expectAffected(result, "remove collection piece"); err != nil {
		return err
	}

	return r.touch(ctx, collectionID)
}

func (r *repository) touch(ctx context.Context, collectionID string) error {
	query := `UPDATE collections SET updated_at = ? WHERE id = ?`

	if _, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(query),
		time.Now().UTC(),
		collectionID,
	); err != nil {
		return fmt.Errorf("touch collection: %w", err)
	}

	return nil
}

// ListVisibleEntries skips pieces the viewer can no longer see, such as
// pieces unshared from every circle the viewer belongs to.
func (r *repository) ListVisibleEntries(
	ctx context.Context,
	collectionID, viewerID string,
) ([]Entry, error) {
	query := `
		SELECT
			p.id AS piece_id, p.title, p.author_id,
			u.username AS author_username,
			u.name AS author_name,
			cp.added_at
		FROM collection_pieces cp
		JOIN pieces p ON p.id = cp.piece_id
		JOIN users u ON u.id = p.author_id
		WHERE cp.collection_id = ?
		AND (
			p.author_id = ?
			OR EXISTS (
				SELECT 1
				FROM piece_shares s
				JOIN circle_members m ON m.circle_id = s.circle_id
				WHERE s.piece_id = p.id AND m.user_id = ? AND s.is_visible = ?
			)
		)
		ORDER BY cp.added_at DESC`

	entries := []Entry{}
	if err := r.db.SelectContext(
		ctx,
		&entries,
		r.db.Rebind(query),
		collectionID,
		viewerID,
		viewerID,
		true,
	); err != nil {
		return nil, fmt.Errorf("list collection pieces: %w", err)
	}

	return entries, nil
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
