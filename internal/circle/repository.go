// AngelaMos | 2026
// repository.go

package circle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Circle) error
	GetByID(ctx context.Context, id string) (*Circle, error)
	Update(ctx context.Context, c *Circle) error
	ListForUser(
		ctx context.Context,
		userID string,
		includeArchived bool,
	) ([]Summary, error)
	AddMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, circleID, userID string) (*Member, error)
	GetMemberProfile(
		ctx context.Context,
		circleID, userID string,
	) (*MemberProfile, error)
	ListMembers(ctx context.Context, circleID string) ([]MemberProfile, error)
	RemoveMember(ctx context.Context, circleID, userID string) error
	SetRole(ctx context.Context, circleID, userID string, role access.Role) error
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

func (r *repository) Create(ctx context.Context, c *Circle) error {
	query := `
		INSERT INTO circles (
			id, name, description, created_by, is_archived,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		c.ID,
		c.Name,
		c.Description,
		c.CreatedBy,
		c.IsArchived,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create circle: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Circle, error) {
	query := `
		SELECT
			id, name, description, created_by, is_archived,
			created_at, updated_at
		FROM circles
		WHERE id = ?`

	var c Circle
	err := r.db.GetContext(ctx, &c, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get circle: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get circle: %w", err)
	}

	return &c, nil
}

func (r *repository) Update(ctx context.Context, c *Circle) error {
	query := `
		UPDATE circles
		SET name = ?, description = ?, is_archived = ?, updated_at = ?
		WHERE id = ?`

	c.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		c.Name,
		c.Description,
		c.IsArchived,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update circle: %w", err)
	}

	return expectAffected(result, "update circle")
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
	includeArchived bool,
) ([]Summary, error) {
	query := `
		SELECT
			c.id, c.name, c.description, c.created_by, c.is_archived,
			c.created_at, c.updated_at,
			m.role,
			(SELECT COUNT(*) FROM circle_members cm WHERE cm.circle_id = c.id)
				AS member_count,
			(SELECT COUNT(*) FROM piece_shares s WHERE s.circle_id = c.id)
				AS piece_count
		FROM circles c
		JOIN circle_members m ON m.circle_id = c.id
		WHERE m.user_id = ?`
	args := []any{userID}

	if !includeArchived {
		query += ` AND c.is_archived = ?`
		args = append(args, false)
	}
	query += ` ORDER BY c.updated_at DESC`

	summaries := []Summary{}
	if err := r.db.SelectContext(ctx, &summaries, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list circles: %w", err)
	}

	return summaries, nil
}

func (r *repository) AddMember(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO circle_members (id, circle_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?, ?)`

	m.JoinedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		m.ID,
		m.CircleID,
		m.UserID,
		m.Role,
		m.JoinedAt,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("add member: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("add member: %w", err)
	}

	return nil
}

func (r *repository) GetMember(
	ctx context.Context,
	circleID, userID string,
) (*Member, error) {
	query := `
		SELECT id, circle_id, user_id, role, joined_at
		FROM circle_members
		WHERE circle_id = ? AND user_id = ?`

	var m Member
	err := r.db.GetContext(ctx, &m, r.db.Rebind(query), circleID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}

	return &m, nil
}

const memberProfileSelect = `
	SELECT
		m.id, m.circle_id, m.user_id, m.role, m.joined_at,
		u.username, u.name, u.avatar_url
	FROM circle_members m
	JOIN users u ON u.id = m.user_id`

func (r *repository) GetMemberProfile(
	ctx context.Context,
	circleID, userID string,
) (*MemberProfile, error) {
	query := memberProfileSelect + ` WHERE m.circle_id = ? AND m.user_id = ?`

	var m MemberProfile
	err := r.db.GetContext(ctx, &m, r.db.Rebind(query), circleID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get member profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member profile: %w", err)
	}

	return &m, nil
}

func (r *repository) ListMembers(
	ctx context.Context,
	circleID string,
) ([]MemberProfile, error) {
	query := memberProfileSelect + `
		WHERE m.circle_id = ?
		ORDER BY m.joined_at ASC`

	members := []MemberProfile{}
	if err := r.db.SelectContext(ctx, &members, r.db.Rebind(query), circleID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

func (r *repository) RemoveMember(
	ctx context.Context,
	circleID, userID string,
) error {
	query := `DELETE FROM circle_members WHERE circle_id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), circleID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	return expectAffected(result, "remove member")
}

func (r *repository) SetRole(
	ctx context.Context,
	circleID, userID string,
	role access.Role,
) error {
	query := `
		UPDATE circle_members
		SET role = ?
		WHERE circle_id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), role, circleID, userID)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("set role: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("set role: %w", err)
	}

	return expectAffected(result, "set role")
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
