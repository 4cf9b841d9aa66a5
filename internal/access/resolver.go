// AngelaMos | 2026
// resolver.go

// Package access answers membership and visibility questions shared by
// the circle, prompt, piece, comment and collection services.
package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/riff/internal/core"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManage reports whether the role may edit the circle, manage prompts
// and remove members.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

type Resolver struct {
	db core.DBTX
}

func NewResolver(db core.DBTX) *Resolver {
	return &Resolver{db: db}
}

// Role returns the user's role in the circle, or "" when they are not a
// member.
func (r *Resolver) Role(
	ctx context.Context,
	circleID, userID string,
) (Role, error) {
	query := `
		SELECT role FROM circle_members
		WHERE circle_id = ? AND user_id = ?`

	var role Role
	err := r.db.GetContext(ctx, &role, r.db.Rebind(query), circleID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get membership role: %w", err)
	}

	return role, nil
}

func (r *Resolver) IsMember(
	ctx context.Context,
	circleID, userID string,
) (bool, error) {
	role, err := r.Role(ctx, circleID, userID)
	if err != nil {
		return false, err
	}
	return role != "", nil
}

func (r *Resolver) CircleExists(ctx context.Context, circleID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM circles WHERE id = ?)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(query), circleID); err != nil {
		return false, fmt.Errorf("check circle exists: %w", err)
	}

	return exists, nil
}

// PieceAuthor returns core.ErrNotFound when the piece does not exist.
func (r *Resolver) PieceAuthor(ctx context.Context, pieceID string) (string, error) {
	query := `SELECT author_id FROM pieces WHERE id = ?`

	var authorID string
	err := r.db.GetContext(ctx, &authorID, r.db.Rebind(query), pieceID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get piece author: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get piece author: %w", err)
	}

	return authorID, nil
}

// SharedCircles lists the circles the viewer belongs to that hold a
// visible share of the piece.
func (r *Resolver) SharedCircles(
	ctx context.Context,
	pieceID, viewerID string,
) ([]string, error) {
	query := `
		SELECT s.circle_id
		FROM piece_shares s
		JOIN circle_members m ON m.circle_id = s.circle_id
		WHERE s.piece_id = ? AND m.user_id = ? AND s.is_visible = ?`

	circleIDs := []string{}
	if err := r.db.SelectContext(
		ctx,
		&circleIDs,
		r.db.Rebind(query),
		pieceID,
		viewerID,
		true,
	); err != nil {
		return nil, fmt.Errorf("list shared circles: %w", err)
	}

	return circleIDs, nil
}

// CanViewPiece is true for the author and for members of any circle the
// piece is visibly shared to. It returns core.ErrNotFound for a missing
// piece.
func (r *Resolver) CanViewPiece(
	ctx context.Context,
	pieceID, viewerID string,
) (bool, error) {
	authorID, err := r.PieceAuthor(ctx, pieceID)
	if err != nil {
		return false, err
	}
	if authorID == viewerID {
		return true, nil
	}

	circles, err := r.SharedCircles(ctx, pieceID, viewerID)
	if err != nil {
		return false, err
	}

	return len(circles) > 0, nil
}

func (r *Resolver) IsSharedTo(
	ctx context.Context,
	pieceID, circleID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM piece_shares
			WHERE piece_id = ? AND circle_id = ? AND is_visible = ?
		)`

	var shared bool
	if err := r.db.GetContext(
		ctx,
		&shared,
		r.db.Rebind(query),
		pieceID,
		circleID,
		true,
	); err != nil {
		return false, fmt.Errorf("check piece shared: %w", err)
	}

	return shared, nil
}

// SharesWith reports whether the author has at least one piece visibly
// shared into a circle the viewer belongs to.
func (r *Resolver) SharesWith(
	ctx context.Context,
	authorID, viewerID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM piece_shares s
			JOIN pieces p ON p.id = s.piece_id
			JOIN circle_members m ON m.circle_id = s.circle_id
			WHERE p.author_id = ? AND m.user_id = ? AND s.is_visible = ?
		)`

	var shares bool
	if err := r.db.GetContext(
		ctx,
		&shares,
		r.db.Rebind(query),
		authorID,
		viewerID,
		true,
	); err != nil {
		return false, fmt.Errorf("check shared author: %w", err)
	}

	return shares, nil
}

func (r *Resolver) MemberCircleIDs(
	ctx context.Context,
	userID string,
) ([]string, error) {
	query := `SELECT circle_id FROM circle_members WHERE user_id = ?`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("list member circles: %w", err)
	}

	return ids, nil
}
