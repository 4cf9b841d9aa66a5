// AngelaMos | 2026
// dto.go

package piece

import (
	"time"

	"github.com/carterperez-dev/riff/internal/core"
)

type CreatePieceRequest struct {
	Title   string  `json:"title"   validate:"required"`
	Content string  `json:"content" validate:"required"`
	Excerpt *string `json:"excerpt"`
}

// UpdatePieceRequest leaves absent fields unchanged. An explicit empty
// title or content is rejected; excerpt is cleared by null or "".
type UpdatePieceRequest struct {
	Title   *string               `json:"title,omitempty"`
	Content *string               `json:"content,omitempty"`
	Excerpt core.Nullable[string] `json:"excerpt"`
}

type AutosaveRequest struct {
	CurrentContent string `json:"currentContent"`
}

type ShareRequest struct {
	CircleID string  `json:"circleId" validate:"required"`
	PromptID *string `json:"promptId"`
}

type UnshareRequest struct {
	CircleID string `json:"circleId" validate:"required"`
}

type AuthorResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

type VersionResponse struct {
	ID            string          `json:"id"`
	PieceID       string          `json:"pieceId"`
	VersionNumber int             `json:"versionNumber"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Excerpt       *string         `json:"excerpt"`
	CreatedAt     time.Time       `json:"createdAt"`
	Shares        []ShareResponse `json:"shares,omitempty"`
}

type CircleRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PromptRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ShareResponse struct {
	ID          string           `json:"id"`
	PieceID     string           `json:"pieceId"`
	CircleID    string           `json:"circleId"`
	VersionID   string           `json:"versionId"`
	PromptID    *string          `json:"promptId"`
	IsVisible   bool             `json:"isVisible"`
	SubmittedAt time.Time        `json:"submittedAt"`
	Circle      CircleRef        `json:"circle"`
	Prompt      *PromptRef       `json:"prompt"`
	Version     *VersionResponse `json:"version,omitempty"`
}

// PieceResponse omits the draft fields and the counts for non-authors.
type PieceResponse struct {
	ID             string            `json:"id"`
	AuthorID       string            `json:"authorId"`
	Title          string            `json:"title"`
	CurrentContent *string           `json:"currentContent,omitempty"`
	CurrentExcerpt *string           `json:"currentExcerpt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	Author         AuthorResponse    `json:"author"`
	VersionCount   *int              `json:"versionCount,omitempty"`
	ShareCount     *int              `json:"shareCount,omitempty"`
	CommentCount   *int              `json:"commentCount,omitempty"`
	IsAuthor       bool              `json:"isAuthor"`
	Versions       []VersionResponse `json:"versions,omitempty"`
	Shares         []ShareResponse   `json:"shares,omitempty"`
}

type AutosaveResponse struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToVersionResponse(v *Version) VersionResponse {
	return VersionResponse{
		ID:            v.ID,
		PieceID:       v.PieceID,
		VersionNumber: v.VersionNumber,
		Title:         v.Title,
		Content:       v.Content,
		Excerpt:       v.Excerpt,
		CreatedAt:     v.CreatedAt,
	}
}

func ToVersionResponseList(versions []VersionListing) []VersionResponse {
	out := make([]VersionResponse, 0, len(versions))
	for i := range versions {
		v := ToVersionResponse(&versions[i].Version)
		if len(versions[i].Shares) > 0 {
			v.Shares = toShareResponses(versions[i].Shares, false)
		}
		out = append(out, v)
	}
	return out
}

func ToShareResponse(s *ShareDetail, withVersion bool) ShareResponse {
	resp := ShareResponse{
		ID:          s.ID,
		PieceID:     s.PieceID,
		CircleID:    s.CircleID,
		VersionID:   s.VersionID,
		PromptID:    s.PromptID,
		IsVisible:   s.IsVisible,
		SubmittedAt: s.SubmittedAt,
		Circle:      CircleRef{ID: s.CircleID, Name: s.CircleName},
	}
	if s.PromptID != nil && s.PromptTitle != nil {
		resp.Prompt = &PromptRef{ID: *s.PromptID, Title: *s.PromptTitle}
	}
	if withVersion {
		v := ToVersionResponse(&s.Version)
		resp.Version = &v
	}
	return resp
}

func toShareResponses(shares []ShareDetail, withVersion bool) []ShareResponse {
	out := make([]ShareResponse, 0, len(shares))
	for i := range shares {
		out = append(out, ToShareResponse(&shares[i], withVersion))
	}
	return out
}

// ToPieceResponse renders s for viewerID.
func ToPieceResponse(s *Summary, viewerID string) PieceResponse {
	resp := PieceResponse{
		ID:        s.ID,
		AuthorID:  s.AuthorID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Author: AuthorResponse{
			ID:        s.AuthorID,
			Username:  s.AuthorUsername,
			Name:      s.AuthorName,
			AvatarURL: s.AuthorAvatarURL,
		},
		IsAuthor: s.AuthorID == viewerID,
	}

	if resp.IsAuthor {
		content := s.CurrentContent
		resp.CurrentContent = &content
		resp.CurrentExcerpt = s.CurrentExcerpt
		resp.VersionCount = &s.VersionCount
		resp.ShareCount = &s.ShareCount
		resp.CommentCount = &s.CommentCount
	}

	if len(s.Shares) > 0 {
		resp.Shares = toShareResponses(s.Shares, true)
	}

	return resp
}

func ToPieceResponseList(summaries []Summary, viewerID string) []PieceResponse {
	out := make([]PieceResponse, 0, len(summaries))
	for i := range summaries {
		out = append(out, ToPieceResponse(&summaries[i], viewerID))
	}
	return out
}

func ToDetailResponse(d *Detail, viewerID string) PieceResponse {
	resp := ToPieceResponse(&d.Summary, viewerID)
	resp.Versions = ToVersionResponseList(d.Versions)
	resp.Shares = toShareResponses(d.Shares, false)
	return resp
}
