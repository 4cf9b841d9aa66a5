// AngelaMos | 2026
// dto.go

package comment

import (
	"time"
)

type CreateCommentRequest struct {
	Content        string  `json:"content"        validate:"required"`
	PieceID        string  `json:"pieceId"        validate:"required"`
	VersionID      string  `json:"versionId"      validate:"required"`
	CircleID       *string `json:"circleId"`
	ParentID       *string `json:"parentId"`
	SelectionStart *int    `json:"selectionStart" validate:"omitempty,min=0"`
	SelectionEnd   *int    `json:"selectionEnd"   validate:"omitempty,min=0"`
	SelectedText   *string `json:"selectedText"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

type AuthorResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

type CommentResponse struct {
	ID             string            `json:"id"`
	PieceID        string            `json:"pieceId"`
	VersionID      string            `json:"versionId"`
	CircleID       *string           `json:"circleId"`
	ParentID       *string           `json:"parentId"`
	Content        string            `json:"content"`
	SelectionStart *int              `json:"selectionStart"`
	SelectionEnd   *int              `json:"selectionEnd"`
	SelectedText   *string           `json:"selectedText"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	Author         AuthorResponse    `json:"author"`
	Replies        []CommentResponse `json:"replies"`
}

func ToCommentResponse(l *Listing) CommentResponse {
	return CommentResponse{
		ID:             l.ID,
		PieceID:        l.PieceID,
		VersionID:      l.VersionID,
		CircleID:       l.CircleID,
		ParentID:       l.ParentID,
		Content:        l.Content,
		SelectionStart: l.SelectionStart,
		SelectionEnd:   l.SelectionEnd,
		SelectedText:   l.SelectedText,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
		Author: AuthorResponse{
			ID:        l.AuthorID,
			Username:  l.AuthorUsername,
			Name:      l.AuthorName,
			AvatarURL: l.AuthorAvatarURL,
		},
		Replies: []CommentResponse{},
	}
}

// ToThreads nests each comment under its parent when the parent is part
// of the same result; everything else is a root. Input order is kept at
// every level.
func ToThreads(listings []Listing) []CommentResponse {
	present := make(map[string]bool, len(listings))
	for i := range listings {
		present[listings[i].ID] = true
	}

	children := make(map[string][]int)
	roots := make([]int, 0, len(listings))
	for i := range listings {
		parent := listings[i].ParentID
		if parent != nil && present[*parent] {
			children[*parent] = append(children[*parent], i)
			continue
		}
		roots = append(roots, i)
	}

	var build func(i int) CommentResponse
	build = func(i int) CommentResponse {
		resp := ToCommentResponse(&listings[i])
		for _, child := range children[listings[i].ID] {
			resp.Replies = append(resp.Replies, build(child))
		}
		return resp
	}

	out := make([]CommentResponse, 0, len(roots))
	for _, i := range roots {
		out = append(out, build(i))
	}
	return out
}
