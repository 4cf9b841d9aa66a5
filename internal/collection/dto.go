// AngelaMos | 2026
// dto.go

package collection

import (
	"time"
)

type CreateCollectionRequest struct {
	Name        string  `json:"name"        validate:"required"`
	Description *string `json:"description"`
}

type AddPieceRequest struct {
	PieceID string `json:"pieceId" validate:"required"`
}

type CollectionResponse struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"ownerId"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	PieceCount  *int            `json:"pieceCount,omitempty"`
	Pieces      []EntryResponse `json:"pieces,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type EntryResponse struct {
	PieceID string      `json:"pieceId"`
	Title   string      `json:"title"`
	Author  EntryAuthor `json:"author"`
	AddedAt time.Time   `json:"addedAt"`
}

type EntryAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func toCollectionResponse(c *Collection) CollectionResponse {
	return CollectionResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ToSummaryResponseList(summaries []Summary) []CollectionResponse {
	out := make([]CollectionResponse, 0, len(summaries))
	for i := range summaries {
		resp := toCollectionResponse(&summaries[i].Collection)
		resp.PieceCount = &summaries[i].PieceCount
		out = append(out, resp)
	}
	return out
}

func ToDetailResponse(d *Detail) CollectionResponse {
	resp := toCollectionResponse(&d.Collection)
	count := len(d.Pieces)
	resp.PieceCount = &count
	resp.Pieces = make([]EntryResponse, 0, len(d.Pieces))
	for _, e := range d.Pieces {
		resp.Pieces = append(resp.Pieces, EntryResponse{
			PieceID: e.PieceID,
			Title:   e.Title,
			Author: EntryAuthor{
				ID:       e.AuthorID,
				Username: e.AuthorUsername,
				Name:     e.AuthorName,
			},
			AddedAt: e.AddedAt,
		})
	}
	return resp
}
