// AngelaMos | 2026
// service.go

package circle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/prompt"
)

// UserDirectory resolves invitees.
type UserDirectory interface {
	UserExists(ctx context.Context, id string) (bool, error)
	UserIDByUsername(ctx context.Context, username string) (string, error)
}

type PromptLister interface {
	ListByCircle(ctx context.Context, circleID string) ([]prompt.Listing, error)
}

type Service struct {
	repo    Repository
	users   UserDirectory
	prompts PromptLister
}

func NewService(
	repo Repository,
	users UserDirectory,
	prompts PromptLister,
) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		prompts: prompts,
	}
}

func notMember() *core.AppError {
	return core.ForbiddenError("You are not a member of this circle")
}

func validateName(name, emptyMessage string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", core.ValidationError(emptyMessage)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", core.ValidationError(fmt.Sprintf(
			"Circle name must be %d characters or less",
			MaxNameLength,
		))
	}
	return name, nil
}

func (s *Service) getCircle(ctx context.Context, circleID string) (*Circle, error) {
	c, err := s.repo.GetByID(ctx, circleID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("circle")
	}
	return c, err
}

// membership returns nil without error when userID is not a member.
func (s *Service) membership(
	ctx context.Context,
	circleID, userID string,
) (*Member, error) {
	m, err := s.repo.GetMember(ctx, circleID, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

func (s *Service) Create(
	ctx context.Context,
	creatorID string,
	req CreateCircleRequest,
) (*Detail, error) {
	name, err := validateName(req.Name, "Circle name is required")
	if err != nil {
		return nil, err
	}

	c := &Circle{
		ID:          uuid.New().String(),
		Name:        name,
		Description: trimToNil(req.Description),
		CreatedBy:   creatorID,
	}

	err = s.repo.InTx(ctx, func(repo Repository) error {
		if err := repo.Create(ctx, c); err != nil {
			return err
		}
		return repo.AddMember(ctx, &Member{
			ID:       uuid.New().String(),
			CircleID: c.ID,
			UserID:   creatorID,
			Role:     access.RoleOwner,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create circle: %w", err)
	}

	slog.InfoContext(ctx, "circle created",
		"circle_id", c.ID,
		"owner_id", creatorID,
	)

	return s.detail(ctx, c, access.RoleOwner)
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	includeArchived bool,
) ([]Summary, error) {
	return s.repo.ListForUser(ctx, userID, includeArchived)
}

func (s *Service) Get(
	ctx context.Context,
	circleID, userID string,
) (*Detail, error) {
	c, err := s.getCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}

	m, err := s.membership(ctx, circleID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, notMember()
	}

	return s.detail(ctx, c, m.Role)
}

func (s *Service) detail(
	ctx context.Context,
	c *Circle,
	role access.Role,
) (*Detail, error) {
	members, err := s.repo.ListMembers(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	prompts, err := s.prompts.ListByCircle(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Circle:  *c,
		Role:    role,
		Members: members,
		Prompts: prompts,
	}, nil
}

func (s *Service) Update(
	ctx context.Context,
	circleID, requesterID string,
	req UpdateCircleRequest,
) (*Detail, error) {
	c, err := s.getCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}

	m, err := s.membership(ctx, circleID, requesterID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.Role.CanManage() {
		return nil, core.ForbiddenError(
			"Only circle owners and admins can update circle details",
		)
	}

	if req.IsArchived != nil {
		if m.Role != access.RoleOwner {
			return nil, core.ForbiddenError(
				"Only the circle owner can archive the circle",
			)
		}
		c.IsArchived = *req.IsArchived
	}

	if req.Name != nil {
		name, err := validateName(*req.Name, "Circle name cannot be empty")
		if err != nil {
			return nil, err
		}
		c.Name = name
	}

	if req.Description.Set {
		c.Description = trimToNil(req.Description.Value)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return s.detail(ctx, c, m.Role)
}

func (s *Service) resolveInvitee(
	ctx context.Context,
	req InviteRequest,
) (string, error) {
	if req.UserID != "" {
		exists, err := s.users.UserExists(ctx, req.UserID)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", core.NotFoundError("user")
		}
		return req.UserID, nil
	}

	id, err := s.users.UserIDByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, core.ErrNotFound) {
		return "", core.NotFoundError("user")
	}
	return id, err
}

// Invite adds a member. Inviting someone as OWNER is an ownership
// transfer: the inviter is demoted to ADMIN in the same transaction.
func (s *Service) Invite(
	ctx context.Context,
	circleID, inviterID string,
	req InviteRequest,
) (*MemberProfile, error) {
	if req.UserID == "" && strings.TrimSpace(req.Username) == "" {
		return nil, core.ValidationError("User ID or username is required")
	}

	if _, err := s.getCircle(ctx, circleID); err != nil {
		return nil, err
	}

	inviter, err := s.membership(ctx, circleID, inviterID)
	if err != nil {
		return nil, err
	}
	if inviter == nil {
		return nil, core.ForbiddenError(
			"You must be a member of this circle to invite others",
		)
	}

	inviteeID, err := s.resolveInvitee(ctx, req)
	if err != nil {
		return nil, err
	}

	existing, err := s.membership(ctx, circleID, inviteeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, core.ConflictError("User is already a member of this circle")
	}

	role := access.RoleMember
	if req.Role != "" {
		role = access.Role(req.Role)
		if !role.Valid() {
			return nil, core.ValidationError("Invalid role")
		}
	}

	if role == access.RoleOwner && inviter.Role != access.RoleOwner {
		return nil, core.ForbiddenError(
			"Only the circle owner can assign owner role",
		)
	}

	err = s.repo.InTx(ctx, func(repo Repository) error {
		if role == access.RoleOwner {
			if err := repo.SetRole(ctx, circleID, inviterID, access.RoleAdmin); err != nil {
				return err
			}
		}
		return repo.AddMember(ctx, &Member{
			ID:       uuid.New().String(),
			CircleID: circleID,
			UserID:   inviteeID,
			Role:     role,
		})
	})
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, core.ConflictError("User is already a member of this circle")
	}
	if err != nil {
		return nil, fmt.Errorf("invite member: %w", err)
	}

	slog.InfoContext(ctx, "member invited",
		"circle_id", circleID,
		"user_id", inviteeID,
		"role", role,
	)

	return s.repo.GetMemberProfile(ctx, circleID, inviteeID)
}

func (s *Service) RemoveMember(
	ctx context.Context,
	circleID, removerID, targetID string,
) error {
	remover, err := s.membership(ctx, circleID, removerID)
	if err != nil {
		return err
	}
	if remover == nil || !remover.Role.CanManage() {
		return core.ForbiddenError(
			"Only circle owners and admins can remove members",
		)
	}

	target, err := s.membership(ctx, circleID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return core.NotFoundError("member")
	}

	switch {
	case target.Role == access.RoleOwner:
		return core.ForbiddenError("Cannot remove the circle owner")
	case target.Role == access.RoleAdmin && remover.Role != access.RoleOwner:
		return core.ForbiddenError("Only the circle owner can remove admins")
	}

	if err := s.repo.RemoveMember(ctx, circleID, targetID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "member removed",
		"circle_id", circleID,
		"user_id", targetID,
		"removed_by", removerID,
	)

	return nil
}

func (s *Service) Leave(ctx context.Context, circleID, userID string) error {
	m, err := s.membership(ctx, circleID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return core.NewAppError(
			core.ErrNotFound,
			"You are not a member of this circle",
			http.StatusNotFound,
			"NOT_FOUND",
		)
	}

	if m.Role == access.RoleOwner {
		return core.ForbiddenError(
			"Circle owner cannot leave. Transfer ownership or archive the circle first.",
		)
	}

	return s.repo.RemoveMember(ctx, circleID, userID)
}

// SetRole changes a member's role. Assigning OWNER transfers ownership:
// the requester is demoted to ADMIN before the target is promoted, inside
// one transaction, so the circle never has two owners.
func (s *Service) SetRole(
	ctx context.Context,
	circleID, requesterID string,
	req SetRoleRequest,
) (*MemberProfile, error) {
	requester, err := s.membership(ctx, circleID, requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil || requester.Role != access.RoleOwner {
		return nil, core.ForbiddenError(
			"Only the circle owner can update member roles",
		)
	}

	role := access.Role(req.Role)
	if !role.Valid() {
		return nil, core.ValidationError("Invalid role")
	}

	target, err := s.membership(ctx, circleID, req.UserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, core.NotFoundError("member")
	}

	if target.UserID == requesterID {
		return nil, core.ValidationError("You cannot change your own role")
	}

	if role == access.RoleOwner {
		err = s.repo.InTx(ctx, func(repo Repository) error {
			if err := repo.SetRole(ctx, circleID, requesterID, access.RoleAdmin); err != nil {
				return err
			}
			return repo.SetRole(ctx, circleID, target.UserID, access.RoleOwner)
		})
		if err != nil {
			return nil, fmt.Errorf("transfer ownership: %w", err)
		}

		slog.InfoContext(ctx, "circle ownership transferred",
			"circle_id", circleID,
			"from_user_id", requesterID,
			"to_user_id", target.UserID,
		)
	} else if err := s.repo.SetRole(ctx, circleID, target.UserID, role); err != nil {
		return nil, err
	}

	return s.repo.GetMemberProfile(ctx, circleID, target.UserID)
}

func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
