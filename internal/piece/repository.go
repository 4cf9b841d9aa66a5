// AngelaMos | 2026
// repository.go

package piece

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/riff/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Piece) error
	GetByID(ctx context.Context, id string) (*Piece, error)
	GetSummary(ctx context.Context, id string) (*Summary, error)
	ListByAuthor(ctx context.Context, authorID string) ([]Summary, error)
	ListSharedByAuthor(ctx context.Context, authorID, viewerID string) ([]Summary, error)
	ListByCircle(ctx context.Context, circleID string) ([]Summary, error)
	Update(ctx context.Context, p *Piece) error
	UpdateContent(ctx context.Context, id, content string) (time.Time, error)
	Delete(ctx context.Context, id string) error

	NextVersionNumber(ctx context.Context, pieceID string) (int, error)
	CreateVersion(ctx context.Context, v *Version) error
	ListVersions(ctx context.Context, pieceID string) ([]VersionListing, error)
	ListVersionsIn(ctx context.Context, pieceID string, ids []string) ([]VersionListing, error)

	CreateShare(ctx context.Context, s *Share) error
	GetShare(ctx context.Context, pieceID, circleID string) (*Share, error)
	GetShareDetail(ctx context.Context, id string) (*ShareDetail, error)
	ListShares(ctx context.Context, pieceID string) ([]ShareDetail, error)
	ListSharesIn(ctx context.Context, pieceID string, circleIDs []string) ([]ShareDetail, error)
	ListCircleShares(ctx context.Context, circleID string) ([]ShareDetail, error)
	DeleteShare(ctx context.Context, pieceID, circleID string) error

	InTx(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) InTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	return core.RunInTx(ctx, r.db, func(tx core.DBTX) error {
		return fn(&repository{db: tx})
	})
}

const summarySelect = `
	SELECT
		p.id, p.author_id, p.title, p.current_content, p.current_excerpt,
		p.created_at, p.updated_at,
		u.username AS author_username,
		u.name AS author_name,
		u.avatar_url AS author_avatar_url,
		(SELECT COUNT(*) FROM piece_versions v WHERE v.piece_id = p.id)
			AS version_count,
		(SELECT COUNT(*) FROM piece_shares s WHERE s.piece_id = p.id)
			AS share_count,
		(SELECT COUNT(*) FROM comments c WHERE c.piece_id = p.id)
			AS comment_count
	FROM pieces p
	JOIN users u ON u.id = p.author_id`

const shareDetailSelect = `
	SELECT
		s.id, s.piece_id, s.circle_id, s.version_id, s.prompt_id,
		s.is_visible, s.submitted_at,
		c.name AS circle_name,
		cp.title AS prompt_title,
		v.id AS "version.id",
		v.piece_id AS "version.piece_id",
		v.version_number AS "version.version_number",
		v.title AS "version.title",
		v.content AS "version.content",
		v.excerpt AS "version.excerpt",
		v.created_at AS "version.created_at"
	FROM piece_shares s
	JOIN circles c ON c.id = s.circle_id
	JOIN piece_versions v ON v.id = s.version_id
	LEFT JOIN circle_prompts cp ON cp.id = s.prompt_id`

const versionSelect = `
	SELECT
		id, piece_id, version_number, title, content, excerpt, created_at
	FROM piece_versions`

func (r *repository) Create(ctx context.Context, p *Piece) error {
	query := `
		INSERT INTO pieces (
			id, author_id, title, current_content, current_excerpt,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		p.ID,
		p.AuthorID,
		p.Title,
		p.CurrentContent,
		p.CurrentExcerpt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create piece: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Piece, error) {
	query := `
		SELECT
			id, author_id, title, current_content, current_excerpt,
			created_at, updated_at
		FROM pieces
		WHERE id = ?`

	var p Piece
	err := r.db.GetContext(ctx, &p, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get piece: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get piece: %w", err)
	}

	return &p, nil
}

func (r *repository) GetSummary(ctx context.Context, id string) (*Summary, error) {
	query := summarySelect + ` WHERE p.id = ?`

	var s Summary
	err := r.db.GetContext(ctx, &s, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get piece summary: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get piece summary: %w", err)
	}

	return &s, nil
}

func (r *repository) selectSummaries(
	ctx context.Context,
	op, query string,
	args ...any,
) ([]Summary, error) {
	summaries := []Summary{}
	if err := r.db.SelectContext(ctx, &summaries, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summaries, nil
}

func (r *repository) ListByAuthor(
	ctx context.Context,
	authorID string,
) ([]Summary, error) {
	query := summarySelect + `
		WHERE p.author_id = ?
		ORDER BY p.updated_at DESC`

	return r.selectSummaries(ctx, "list pieces by author", query, authorID)
}

// ListSharedByAuthor returns the author's pieces that are visibly shared
// into at least one circle the viewer belongs to.
func (r *repository) ListSharedByAuthor(
	ctx context.Context,
	authorID, viewerID string,
) ([]Summary, error) {
	query := summarySelect + `
		WHERE p.author_id = ?
		AND EXISTS (
			SELECT 1
			FROM piece_shares s
			JOIN circle_members m ON m.circle_id = s.circle_id
			WHERE s.piece_id = p.id AND m.user_id = ? AND s.is_visible = ?
		)
		ORDER BY p.updated_at DESC`

	return r.selectSummaries(ctx, "list shared pieces by author", query,
		authorID, viewerID, true)
}

func (r *repository) ListByCircle(
	ctx context.Context,
	circleID string,
) ([]Summary, error) {
	query := summarySelect + `
		WHERE EXISTS (
			SELECT 1 FROM piece_shares s
			WHERE s.piece_id = p.id AND s.circle_id = ? AND s.is_visible = ?
		)
		ORDER BY p.updated_at DESC`

	return r.selectSummaries(ctx, "list circle pieces", query, circleID, true)
}

func (r *repository) Update(ctx context.Context, p *Piece) error {
	query := `
		UPDATE pieces
		SET title = ?, current_content = ?, current_excerpt = ?, updated_at = ?
		WHERE id = ?`

	p.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		p.Title,
		p.CurrentContent,
		p.CurrentExcerpt,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update piece: %w", err)
	}

	return expectAffected(result, "update piece")
}

// UpdateContent touches only the draft body and updated_at.
func (r *repository) UpdateContent(
	ctx context.Context,
	id, content string,
) (time.Time, error) {
	query := `UPDATE pieces SET current_content = ?, updated_at = ? WHERE id = ?`

	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), content, now, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("autosave piece: %w", err)
	}

	if err := expectAffected(result, "autosave piece"); err != nil {
		return time.Time{}, err
	}

	return now, nil
}

// Delete relies on the schema's cascades for versions, shares, comments
// and collection entries.
func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM pieces WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return fmt.Errorf("delete piece: %w", err)
	}

	return expectAffected(result, "delete piece")
}

func (r *repository) NextVersionNumber(
	ctx context.Context,
	pieceID string,
) (int, error) {
	query := `
		SELECT COALESCE(MAX(version_number), 0) + 1
		FROM piece_versions
		WHERE piece_id = ?`

	var next int
	if err := r.db.GetContext(ctx, &next, r.db.Rebind(query), pieceID); err != nil {
		return 0, fmt.Errorf("next version number: %w", err)
	}

	return next, nil
}

func (r *repository) CreateVersion(ctx context.Context, v *Version) error {
	query := `
		INSERT INTO piece_versions (
			id, piece_id, version_number, title, content, excerpt, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	v.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		v.ID,
		v.PieceID,
		v.VersionNumber,
		v.Title,
		v.Content,
		v.Excerpt,
		v.CreatedAt,
	)
	if core.IsUniqueViolation(err) {
		return fmt.Errorf("create version: %w", core.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("create version: %w", err)
	}

	return nil
}

func (r *repository) ListVersions(
	ctx context.Context,
	pieceID string,
) ([]VersionListing, error) {
	query := versionSelect + `
		WHERE piece_id = ?
		ORDER BY version_number DESC`

	versions := []VersionListing{}
	if err := r.db.SelectContext(ctx, &versions, r.db.Rebind(query), pieceID); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}

	return versions, nil
}

func (r *repository) ListVersionsIn(
	ctx context.Context,
	pieceID string,
	ids []string,
) ([]VersionListing, error) {
	versions := []VersionListing{}
	if len(ids) == 0 {
		return versions, nil
	}

	query, args, err := core.In(r.db, versionSelect+`
		WHERE piece_id = ? AND id IN (?)
		ORDER BY version_number DESC`, pieceID, ids)
	if err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &versions, query, args...); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}

	return versions, nil
}

func (r *repository) CreateShare(ctx context.Context, s *Share) error {
	query := `
		INSERT INTO piece_shares (
			id, piece_id, circle_id, version_id, prompt_id, is_visible,
			submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	s.SubmittedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		s.ID,
		s.PieceID,
		s.CircleID,
		s.VersionID,
		s.PromptID,
		s.IsVisible,
		s.SubmittedAt,
	)
	if core.IsUniqueViolation(err) {
		return fmt.Errorf("create share: %w", core.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("create share: %w", err)
	}

	return nil
}

func (r *repository) GetShare(
	ctx context.Context,
	pieceID, circleID string,
) (*Share, error) {
	query := `
		SELECT
			id, piece_id, circle_id, version_id, prompt_id, is_visible,
			submitted_at
		FROM piece_shares
		WHERE piece_id = ? AND circle_id = ?`

	var s Share
	err := r.db.GetContext(ctx, &s, r.db.Rebind(query), pieceID, circleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get share: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}

	return &s, nil
}

func (r *repository) GetShareDetail(
	ctx context.Context,
	id string,
) (*ShareDetail, error) {
	query := shareDetailSelect + ` WHERE s.id = ?`

	var s ShareDetail
	err := r.db.GetContext(ctx, &s, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get share detail: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get share detail: %w", err)
	}

	return &s, nil
}

func (r *repository) ListShares(
	ctx context.Context,
	pieceID string,
) ([]ShareDetail, error) {
	query := shareDetailSelect + `
		WHERE s.piece_id = ?
		ORDER BY s.submitted_at DESC`

	shares := []ShareDetail{}
	if err := r.db.SelectContext(ctx, &shares, r.db.Rebind(query), pieceID); err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}

	return shares, nil
}

// ListSharesIn returns the piece's visible shares in the given circles.
func (r *repository) ListSharesIn(
	ctx context.Context,
	pieceID string,
	circleIDs []string,
) ([]ShareDetail, error) {
	shares := []ShareDetail{}
	if len(circleIDs) == 0 {
		return shares, nil
	}

	query, args, err := core.In(r.db, shareDetailSelect+`
		WHERE s.piece_id = ? AND s.circle_id IN (?) AND s.is_visible = ?
		ORDER BY s.submitted_at DESC`, pieceID, circleIDs, true)
	if err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &shares, query, args...); err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}

	return shares, nil
}

func (r *repository) ListCircleShares(
	ctx context.Context,
	circleID string,
) ([]ShareDetail, error) {
	query := shareDetailSelect + `
		WHERE s.circle_id = ? AND s.is_visible = ?
		ORDER BY s.submitted_at DESC`

	shares := []ShareDetail{}
	if err := r.db.SelectContext(
		ctx,
		&shares,
		r.db.Rebind(query),
		circleID,
		true,
	); err != nil {
		return nil, fmt.Errorf("list circle shares: %w", err)
	}

	return shares, nil
}

// DeleteShare removes the share only; the version it pointed at stays.
func (r *repository) DeleteShare(
	ctx context.Context,
	pieceID, circleID string,
) error {
	query := `DELETE FROM piece_shares WHERE piece_id = ? AND circle_id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), pieceID, circleID)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}

	return expectAffected(result, "delete share")
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
