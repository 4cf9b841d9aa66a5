// AngelaMos | 2026
// service.go

package piece

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/core"
)

// PromptChecker confirms a prompt belongs to a circle.
type PromptChecker interface {
	InCircle(ctx context.Context, circleID, promptID string) (bool, error)
}

type Service struct {
	repo      Repository
	resolver  *access.Resolver
	prompts   PromptChecker
	sanitizer *core.Sanitizer
}

func NewService(
	repo Repository,
	resolver *access.Resolver,
	prompts PromptChecker,
	sanitizer *core.Sanitizer,
) *Service {
	return &Service{
		repo:      repo,
		resolver:  resolver,
		prompts:   prompts,
		sanitizer: sanitizer,
	}
}

func (s *Service) cleanTitle(title, emptyMessage string) (string, error) {
	title = s.sanitizer.Text(title)
	if title == "" {
		return "", core.ValidationError(emptyMessage)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", core.ValidationError(fmt.Sprintf(
			"Piece title must be %d characters or less",
			MaxTitleLength,
		))
	}
	return title, nil
}

func (s *Service) cleanContent(content, emptyMessage string) (string, error) {
	content = strings.TrimSpace(s.sanitizer.HTML(content))
	if content == "" {
		return "", core.ValidationError(emptyMessage)
	}
	return content, nil
}

func (s *Service) cleanExcerpt(excerpt *string) *string {
	if excerpt == nil {
		return nil
	}
	v := s.sanitizer.Text(*excerpt)
	if v == "" {
		return nil
	}
	return &v
}

// authored loads the piece and requires requesterID to be its author.
func (s *Service) authored(
	ctx context.Context,
	pieceID, requesterID, action string,
) (*Piece, error) {
	p, err := s.repo.GetByID(ctx, pieceID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("piece")
	}
	if err != nil {
		return nil, err
	}

	if p.AuthorID != requesterID {
		return nil, core.ForbiddenError("Only the author can " + action + " this piece")
	}

	return p, nil
}

func (s *Service) Create(
	ctx context.Context,
	authorID string,
	req CreatePieceRequest,
) (*Summary, error) {
	title, err := s.cleanTitle(req.Title, "Piece title is required")
	if err != nil {
		return nil, err
	}

	content, err := s.cleanContent(req.Content, "Piece content is required")
	if err != nil {
		return nil, err
	}

	p := &Piece{
		ID:             uuid.New().String(),
		AuthorID:       authorID,
		Title:          title,
		CurrentContent: content,
		CurrentExcerpt: s.cleanExcerpt(req.Excerpt),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "piece created",
		"piece_id", p.ID,
		"author_id", authorID,
	)

	return s.repo.GetSummary(ctx, p.ID)
}

func (s *Service) List(
	ctx context.Context,
	requesterID string,
	filter ListFilter,
) ([]Summary, error) {
	switch {
	case filter.CircleID != "":
		return s.listCircle(ctx, filter.CircleID, requesterID)

	case filter.AuthorID != "" && filter.AuthorID != requesterID:
		shares, err := s.resolver.SharesWith(ctx, filter.AuthorID, requesterID)
		if err != nil {
			return nil, err
		}
		if !shares {
			return nil, core.ForbiddenError(
				"You do not have permission to view these pieces",
			)
		}
		return s.repo.ListSharedByAuthor(ctx, filter.AuthorID, requesterID)

	default:
		return s.repo.ListByAuthor(ctx, requesterID)
	}
}

func (s *Service) listCircle(
	ctx context.Context,
	circleID, requesterID string,
) ([]Summary, error) {
	member, err := s.resolver.IsMember(ctx, circleID, requesterID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, core.ForbiddenError("You are not a member of this circle")
	}

	summaries, err := s.repo.ListByCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}

	shares, err := s.repo.ListCircleShares(ctx, circleID)
	if err != nil {
		return nil, err
	}

	byPiece := make(map[string][]ShareDetail, len(shares))
	for _, sh := range shares {
		byPiece[sh.PieceID] = append(byPiece[sh.PieceID], sh)
	}
	for i := range summaries {
		summaries[i].Shares = byPiece[summaries[i].ID]
	}

	return summaries, nil
}

// history returns the versions and shares viewerID may see. Authors see
// everything; other viewers see only the visible shares in their circles
// and the versions those shares point at.
func (s *Service) history(
	ctx context.Context,
	pieceID, viewerID string,
	isAuthor bool,
) ([]VersionListing, []ShareDetail, error) {
	var (
		versions []VersionListing
		shares   []ShareDetail
		err      error
	)

	if isAuthor {
		if versions, err = s.repo.ListVersions(ctx, pieceID); err != nil {
			return nil, nil, err
		}
		if shares, err = s.repo.ListShares(ctx, pieceID); err != nil {
			return nil, nil, err
		}
	} else {
		circles, err := s.resolver.SharedCircles(ctx, pieceID, viewerID)
		if err != nil {
			return nil, nil, err
		}
		if len(circles) == 0 {
			return nil, nil, core.ForbiddenError(
				"You do not have permission to view this piece",
			)
		}

		if shares, err = s.repo.ListSharesIn(ctx, pieceID, circles); err != nil {
			return nil, nil, err
		}

		ids := make([]string, 0, len(shares))
		for _, sh := range shares {
			ids = append(ids, sh.VersionID)
		}
		if versions, err = s.repo.ListVersionsIn(ctx, pieceID, ids); err != nil {
			return nil, nil, err
		}
	}

	byVersion := make(map[string][]ShareDetail, len(shares))
	for _, sh := range shares {
		byVersion[sh.VersionID] = append(byVersion[sh.VersionID], sh)
	}
	for i := range versions {
		versions[i].Shares = byVersion[versions[i].ID]
	}

	return versions, shares, nil
}

func (s *Service) Get(
	ctx context.Context,
	pieceID, viewerID string,
) (*Detail, error) {
	summary, err := s.repo.GetSummary(ctx, pieceID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("piece")
	}
	if err != nil {
		return nil, err
	}

	isAuthor := summary.AuthorID == viewerID

	versions, shares, err := s.history(ctx, pieceID, viewerID, isAuthor)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Summary:  *summary,
		IsAuthor: isAuthor,
		Versions: versions,
		Shares:   shares,
	}, nil
}

func (s *Service) ListVersions(
	ctx context.Context,
	pieceID, viewerID string,
) ([]VersionListing, error) {
	authorID, err := s.resolver.PieceAuthor(ctx, pieceID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("piece")
	}
	if err != nil {
		return nil, err
	}

	versions, _, err := s.history(ctx, pieceID, viewerID, authorID == viewerID)
	return versions, err
}

func (s *Service) Update(
	ctx context.Context,
	pieceID, requesterID string,
	req UpdatePieceRequest,
) (*Summary, error) {
	p, err := s.authored(ctx, pieceID, requesterID, "update")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title, err := s.cleanTitle(*req.Title, "Piece title cannot be empty")
		if err != nil {
			return nil, err
		}
		p.Title = title
	}

	if req.Content != nil {
		content, err := s.cleanContent(*req.Content, "Piece content cannot be empty")
		if err != nil {
			return nil, err
		}
		p.CurrentContent = content
	}

	if req.Excerpt.Set {
		p.CurrentExcerpt = s.cleanExcerpt(req.Excerpt.Value)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return s.repo.GetSummary(ctx, p.ID)
}

// Autosave replaces only the draft body.
func (s *Service) Autosave(
	ctx context.Context,
	pieceID, requesterID, content string,
) (*AutosaveResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, core.ValidationError("Content is required")
	}

	if _, err := s.authored(ctx, pieceID, requesterID, "edit"); err != nil {
		return nil, err
	}

	updatedAt, err := s.repo.UpdateContent(ctx, pieceID, s.sanitizer.HTML(content))
	if err != nil {
		return nil, err
	}

	return &AutosaveResponse{ID: pieceID, UpdatedAt: updatedAt}, nil
}

func (s *Service) Delete(ctx context.Context, pieceID, requesterID string) error {
	if _, err := s.authored(ctx, pieceID, requesterID, "delete"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, pieceID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "piece deleted",
		"piece_id", pieceID,
		"author_id", requesterID,
	)

	return nil
}

// errVersionTaken marks a concurrent share that claimed the same version
// number first.
var errVersionTaken = errors.New("version number taken")

// Share freezes the current draft as the next version and shares that
// version with the circle, both in one transaction.
func (s *Service) Share(
	ctx context.Context,
	pieceID, authorID string,
	req ShareRequest,
) (*ShareDetail, error) {
	if req.CircleID == "" {
		return nil, core.ValidationError("Circle ID is required")
	}

	if _, err := s.authored(ctx, pieceID, authorID, "share"); err != nil {
		return nil, err
	}

	member, err := s.resolver.IsMember(ctx, req.CircleID, authorID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, core.ForbiddenError(
			"You must be a member of this circle to share to it",
		)
	}

	_, err = s.repo.GetShare(ctx, pieceID, req.CircleID)
	if err == nil {
		return nil, core.ConflictError("Piece is already shared to this circle")
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	var promptID *string
	if req.PromptID != nil && *req.PromptID != "" {
		ok, err := s.prompts.InCircle(ctx, req.CircleID, *req.PromptID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, core.NotFoundError("prompt")
		}
		promptID = req.PromptID
	}

	share := &Share{
		ID:        uuid.New().String(),
		PieceID:   pieceID,
		CircleID:  req.CircleID,
		PromptID:  promptID,
		IsVisible: true,
	}

	var versionNumber int
	err = s.repo.InTx(ctx, func(repo Repository) error {
		p, err := repo.GetByID(ctx, pieceID)
		if err != nil {
			return err
		}

		next, err := repo.NextVersionNumber(ctx, pieceID)
		if err != nil {
			return err
		}

		v := &Version{
			ID:            uuid.New().String(),
			PieceID:       pieceID,
			VersionNumber: next,
			Title:         p.Title,
			Content:       p.CurrentContent,
			Excerpt:       p.CurrentExcerpt,
		}
		if err := repo.CreateVersion(ctx, v); err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				return errVersionTaken
			}
			return err
		}

		share.VersionID = v.ID
		versionNumber = next

		return repo.CreateShare(ctx, share)
	})
	if errors.Is(err, errVersionTaken) {
		return nil, core.ConflictError(
			"Another version of this piece was just created. Please try again.",
		)
	}
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, core.ConflictError("Piece is already shared to this circle")
	}
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("piece")
	}
	if err != nil {
		return nil, fmt.Errorf("share piece: %w", err)
	}

	core.AddSpanEvent(ctx, "piece.shared",
		attribute.String("piece.id", pieceID),
		attribute.String("circle.id", req.CircleID),
		attribute.Int("version.number", versionNumber),
	)
	slog.InfoContext(ctx, "piece shared",
		"piece_id", pieceID,
		"circle_id", req.CircleID,
		"version_number", versionNumber,
	)

	return s.repo.GetShareDetail(ctx, share.ID)
}

// Unshare removes the circle's share. The version it pointed at is kept.
func (s *Service) Unshare(
	ctx context.Context,
	pieceID, authorID, circleID string,
) error {
	if circleID == "" {
		return core.ValidationError("Circle ID is required")
	}

	if _, err := s.authored(ctx, pieceID, authorID, "unshare"); err != nil {
		return err
	}

	err := s.repo.DeleteShare(ctx, pieceID, circleID)
	if errors.Is(err, core.ErrNotFound) {
		return core.NewAppError(
			core.ErrNotFound,
			"Piece is not shared to this circle",
			http.StatusNotFound,
			"NOT_FOUND",
		)
	}
	if err != nil {
		return err
	}

	core.AddSpanEvent(ctx, "piece.unshared",
		attribute.String("piece.id", pieceID),
		attribute.String("circle.id", circleID),
	)
	slog.InfoContext(ctx, "piece unshared",
		"piece_id", pieceID,
		"circle_id", circleID,
	)

	return nil
}
