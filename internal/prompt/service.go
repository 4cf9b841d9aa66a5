// AngelaMos | 2026
// service.go

package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/core"
)

type Service struct {
	repo     Repository
	resolver *access.Resolver
}

func NewService(repo Repository, resolver *access.Resolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

func (s *Service) requireManager(
	ctx context.Context,
	circleID, userID, action string,
) error {
	role, err := s.resolver.Role(ctx, circleID, userID)
	if err != nil {
		return err
	}
	if !role.CanManage() {
		return core.ForbiddenError(
			"Only circle owners and admins can " + action + " prompts",
		)
	}
	return nil
}

// promptInCircle hides prompts of other circles behind the same 404 as a
// missing prompt.
func (s *Service) promptInCircle(
	ctx context.Context,
	circleID, promptID string,
) (*Prompt, error) {
	p, err := s.repo.GetByID(ctx, promptID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("prompt")
	}
	if err != nil {
		return nil, err
	}
	if p.CircleID != circleID {
		return nil, core.NotFoundError("prompt")
	}
	return p, nil
}

func (s *Service) Create(
	ctx context.Context,
	circleID, requesterID string,
	req CreatePromptRequest,
) (*Listing, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, core.ValidationError("Prompt title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, core.ValidationError(
			fmt.Sprintf("Prompt title must be %d characters or less", MaxTitleLength),
		)
	}

	if err := s.requireManager(ctx, circleID, requesterID, "create"); err != nil {
		return nil, err
	}

	rule := VisibilityOnSubmit
	if req.VisibilityRule != "" {
		rule = VisibilityRule(req.VisibilityRule)
		if !rule.Valid() {
			return nil, core.ValidationError("Invalid visibility rule")
		}
	}

	p := &Prompt{
		ID:             uuid.New().String(),
		CircleID:       circleID,
		Title:          title,
		Description:    trimToNil(req.Description),
		IsFreeform:     req.IsFreeform,
		VisibilityRule: rule,
		CreatedBy:      requesterID,
	}

	if req.Deadline != nil {
		deadline, err := ParseDeadline(*req.Deadline)
		if err != nil {
			return nil, err
		}
		p.Deadline = deadline
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "prompt created",
		"prompt_id", p.ID,
		"circle_id", circleID,
		"visibility_rule", rule,
	)

	return s.repo.GetListing(ctx, p.ID)
}

func (s *Service) Update(
	ctx context.Context,
	circleID, promptID, requesterID string,
	req UpdatePromptRequest,
) (*Listing, error) {
	if err := s.requireManager(ctx, circleID, requesterID, "update"); err != nil {
		return nil, err
	}

	p, err := s.promptInCircle(ctx, circleID, promptID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, core.ValidationError("Prompt title cannot be empty")
		}
		if utf8.RuneCountInString(title) > MaxTitleLength {
			return nil, core.ValidationError(
				fmt.Sprintf("Prompt title must be %d characters or less", MaxTitleLength),
			)
		}
		p.Title = title
	}

	if req.VisibilityRule != nil {
		rule := VisibilityRule(*req.VisibilityRule)
		if !rule.Valid() {
			return nil, core.ValidationError("Invalid visibility rule")
		}
		p.VisibilityRule = rule
	}

	if req.Description.Set {
		p.Description = trimToNil(req.Description.Value)
	}

	if req.Deadline.Set {
		p.Deadline = nil
		if req.Deadline.Value != nil {
			deadline, err := ParseDeadline(*req.Deadline.Value)
			if err != nil {
				return nil, err
			}
			p.Deadline = deadline
		}
	}

	if req.IsFreeform != nil {
		p.IsFreeform = *req.IsFreeform
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return s.repo.GetListing(ctx, p.ID)
}

// Delete detaches the prompt's shares; the shared pieces stay in the
// circle.
func (s *Service) Delete(
	ctx context.Context,
	circleID, promptID, requesterID string,
) error {
	if err := s.requireManager(ctx, circleID, requesterID, "delete"); err != nil {
		return err
	}

	if _, err := s.promptInCircle(ctx, circleID, promptID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, promptID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "prompt deleted",
		"prompt_id", promptID,
		"circle_id", circleID,
	)

	return nil
}

func (s *Service) List(
	ctx context.Context,
	circleID, requesterID string,
) ([]Listing, error) {
	member, err := s.resolver.IsMember(ctx, circleID, requesterID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, core.ForbiddenError("You are not a member of this circle")
	}

	return s.repo.ListByCircle(ctx, circleID)
}

// InCircle reports whether promptID names a prompt of circleID.
func (s *Service) InCircle(
	ctx context.Context,
	circleID, promptID string,
) (bool, error) {
	_, err := s.promptInCircle(ctx, circleID, promptID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	return false, err
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
