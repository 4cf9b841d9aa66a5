// AngelaMos | 2026
// service.go

package collection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
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

func (s *Service) owned(
	ctx context.Context,
	collectionID, ownerID string,
) (*Collection, error) {
	c, err := s.repo.GetByID(ctx, collectionID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("collection")
	}
	if err != nil {
		return nil, err
	}

	if c.OwnerID != ownerID {
		return nil, core.ForbiddenError("You do not own this collection")
	}

	return c, nil
}

func (s *Service) Create(
	ctx context.Context,
	ownerID string,
	req CreateCollectionRequest,
) (*Detail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, core.ValidationError("Collection name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, core.ValidationError(fmt.Sprintf(
			"Collection name must be %d characters or less",
			MaxNameLength,
		))
	}

	var description *string
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d != "" {
			description = &d
		}
	}

	c := &Collection{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return &Detail{Collection: *c, Pieces: []Entry{}}, nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Summary, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) Get(
	ctx context.Context,
	collectionID, ownerID string,
) (*Detail, error) {
	c, err := s.owned(ctx, collectionID, ownerID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListVisibleEntries(ctx, collectionID, ownerID)
	if err != nil {
		return nil, err
	}

	return &Detail{Collection: *c, Pieces: entries}, nil
}

func (s *Service) AddPiece(
	ctx context.Context,
	collectionID, ownerID, pieceID string,
) error {
	if _, err := s.owned(ctx, collectionID, ownerID); err != nil {
		return err
	}

	visible, err := s.resolver.CanViewPiece(ctx, pieceID, ownerID)
	if errors.Is(err, core.ErrNotFound) {
		return core.NotFoundError("piece")
	}
	if err != nil {
		return err
	}
	if !visible {
		return core.ForbiddenError("You do not have permission to view this piece")
	}

	err = s.repo.AddPiece(ctx, collectionID, pieceID)
	if errors.Is(err, core.ErrDuplicateKey) {
		return core.ConflictError("Piece is already in this collection")
	}
	return err
}

func (s *Service) RemovePiece(
	ctx context.Context,
	collectionID, ownerID, pieceID string,
) error {
	if _, err := s.owned(ctx, collectionID, ownerID); err != nil {
		return err
	}

	err := s.repo.RemovePiece(ctx, collectionID, pieceID)
	if errors.Is(err, core.ErrNotFound) {
		return core.NewAppError(
			core.ErrNotFound,
			"Piece is not in this collection",
			http.StatusNotFound,
			"NOT_FOUND",
		)
	}
	return err
}

func (s *Service) Delete(ctx context.Context, collectionID, ownerID string) error {
	if _, err := s.owned(ctx, collectionID, ownerID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, collectionID)
}
