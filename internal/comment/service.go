// AngelaMos | 2026
// service.go

package comment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/core"
)

type Service struct {
	repo      Repository
	resolver  *access.Resolver
	sanitizer *core.Sanitizer
}

func NewService(
	repo Repository,
	resolver *access.Resolver,
	sanitizer *core.Sanitizer,
) *Service {
	return &Service{
		repo:      repo,
		resolver:  resolver,
		sanitizer: sanitizer,
	}
}

func notFound(message string) *core.AppError {
	return core.NewAppError(core.ErrNotFound, message, http.StatusNotFound, "NOT_FOUND")
}

func (s *Service) cleanContent(content, emptyMessage string) (string, error) {
	content = strings.TrimSpace(s.sanitizer.HTML(content))
	if content == "" {
		return "", core.ValidationError(emptyMessage)
	}
	return content, nil
}

// pieceVersion checks the piece exists and owns the version, and returns
// the piece author.
func (s *Service) pieceVersion(
	ctx context.Context,
	pieceID, versionID string,
) (string, error) {
	if pieceID == "" || versionID == "" {
		return "", core.ValidationError("Piece ID and version ID are required")
	}

	authorID, err := s.resolver.PieceAuthor(ctx, pieceID)
	if errors.Is(err, core.ErrNotFound) {
		return "", core.NotFoundError("piece")
	}
	if err != nil {
		return "", err
	}

	owner, err := s.repo.VersionPiece(ctx, versionID)
	if errors.Is(err, core.ErrNotFound) || (err == nil && owner != pieceID) {
		return "", core.NotFoundError("version")
	}
	if err != nil {
		return "", err
	}

	return authorID, nil
}

// circleAccess requires a non-author to belong to circleID and the piece
// to be shared there.
func (s *Service) circleAccess(
	ctx context.Context,
	pieceID, circleID, userID, forbiddenMessage string,
) error {
	member, err := s.resolver.IsMember(ctx, circleID, userID)
	if err != nil {
		return err
	}
	if !member {
		return core.ForbiddenError(forbiddenMessage)
	}

	shared, err := s.resolver.IsSharedTo(ctx, pieceID, circleID)
	if err != nil {
		return err
	}
	if !shared {
		return notFound("Piece is not shared to this circle")
	}

	return nil
}

func validateSelection(req CreateCommentRequest) error {
	start, end := req.SelectionStart, req.SelectionEnd
	if start == nil && end == nil {
		return nil
	}
	if start == nil || end == nil || *start < 0 || *start > *end {
		return core.ValidationError("Invalid text selection")
	}
	return nil
}

func (s *Service) Create(
	ctx context.Context,
	authorID string,
	req CreateCommentRequest,
) (*Listing, error) {
	content, err := s.cleanContent(req.Content, "Comment content is required")
	if err != nil {
		return nil, err
	}

	if err := validateSelection(req); err != nil {
		return nil, err
	}

	pieceAuthor, err := s.pieceVersion(ctx, req.PieceID, req.VersionID)
	if err != nil {
		return nil, err
	}

	circleID := nonEmpty(req.CircleID)

	if pieceAuthor != authorID {
		if circleID == nil {
			return nil, core.ForbiddenError(
				"You do not have permission to comment on this piece",
			)
		}
		if err := s.circleAccess(
			ctx,
			req.PieceID,
			*circleID,
			authorID,
			"You must be a member of this circle to comment",
		); err != nil {
			return nil, err
		}
	}

	parentID := nonEmpty(req.ParentID)
	if parentID != nil {
		parent, err := s.repo.GetByID(ctx, *parentID)
		if errors.Is(err, core.ErrNotFound) || (err == nil && parent.PieceID != req.PieceID) {
			return nil, notFound("Parent comment not found")
		}
		if err != nil {
			return nil, err
		}
	}

	c := &Comment{
		ID:             uuid.New().String(),
		PieceID:        req.PieceID,
		VersionID:      req.VersionID,
		CircleID:       circleID,
		AuthorID:       authorID,
		ParentID:       parentID,
		Content:        content,
		SelectionStart: req.SelectionStart,
		SelectionEnd:   req.SelectionEnd,
	}
	if req.SelectedText != nil {
		text := s.sanitizer.Text(*req.SelectedText)
		c.SelectedText = nonEmpty(&text)
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return s.repo.GetListing(ctx, c.ID)
}

// authored loads the comment and requires requesterID to have written it.
func (s *Service) authored(
	ctx context.Context,
	commentID, requesterID, action string,
) (*Comment, error) {
	c, err := s.repo.GetByID(ctx, commentID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("comment")
	}
	if err != nil {
		return nil, err
	}

	if c.AuthorID != requesterID {
		return nil, core.ForbiddenError(
			"Only the comment author can " + action + " this comment",
		)
	}

	return c, nil
}

func (s *Service) Update(
	ctx context.Context,
	commentID, requesterID, content string,
) (*Listing, error) {
	content, err := s.cleanContent(content, "Comment content cannot be empty")
	if err != nil {
		return nil, err
	}

	if _, err := s.authored(ctx, commentID, requesterID, "update"); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateContent(ctx, commentID, content); err != nil {
		return nil, err
	}

	return s.repo.GetListing(ctx, commentID)
}

func (s *Service) Delete(ctx context.Context, commentID, requesterID string) error {
	if _, err := s.authored(ctx, commentID, requesterID, "delete"); err != nil {
		return err
	}

	return s.repo.Delete(ctx, commentID)
}

// List returns the version's comments in creation order. A circle's
// members keep its comments after the piece is unshared. Without a
// circle, a non-author sees only comments made in their own circles.
func (s *Service) List(
	ctx context.Context,
	requesterID string,
	filter ListFilter,
) ([]Listing, error) {
	pieceAuthor, err := s.pieceVersion(ctx, filter.PieceID, filter.VersionID)
	if err != nil {
		return nil, err
	}
	isAuthor := pieceAuthor == requesterID

	if filter.CircleID != "" {
		exists, err := s.resolver.CircleExists(ctx, filter.CircleID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, core.NotFoundError("circle")
		}

		if !isAuthor {
			member, err := s.resolver.IsMember(ctx, filter.CircleID, requesterID)
			if err != nil {
				return nil, err
			}
			if !member {
				return nil, core.ForbiddenError(
					"You do not have permission to view these comments",
				)
			}
		}
		return s.repo.ListInCircles(
			ctx,
			filter.PieceID,
			filter.VersionID,
			[]string{filter.CircleID},
		)
	}

	if isAuthor {
		return s.repo.List(ctx, filter.PieceID, filter.VersionID)
	}

	visible, err := s.resolver.CanViewPiece(ctx, filter.PieceID, requesterID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, core.ForbiddenError(
			"You do not have permission to view these comments",
		)
	}

	circles, err := s.resolver.MemberCircleIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListInCircles(ctx, filter.PieceID, filter.VersionID, circles)
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
