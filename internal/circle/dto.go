// AngelaMos | 2026
// dto.go

package circle

import (
	"time"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/prompt"
)

type CreateCircleRequest struct {
	Name        string  `json:"name"        validate:"required"`
	Description *string `json:"description"`
}

// UpdateCircleRequest leaves absent fields unchanged; description is
// cleared by null.
type UpdateCircleRequest struct {
	Name        *string               `json:"name,omitempty"`
	Description core.Nullable[string] `json:"description"`
	IsArchived  *bool                 `json:"isArchived,omitempty"`
}

// InviteRequest names the invitee by id or by username.
type InviteRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type RemoveMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type SetRoleRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role"   validate:"required"`
}

type CircleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	IsArchived  bool      `json:"isArchived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SummaryResponse struct {
	CircleResponse
	Role        access.Role `json:"role"`
	MemberCount int         `json:"memberCount"`
	PieceCount  int         `json:"pieceCount"`
}

type MemberUser struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

type MemberResponse struct {
	ID       string      `json:"id"`
	CircleID string      `json:"circleId"`
	UserID   string      `json:"userId"`
	Role     access.Role `json:"role"`
	JoinedAt time.Time   `json:"joinedAt"`
	User     MemberUser  `json:"user"`
}

type DetailResponse struct {
	CircleResponse
	Role    access.Role             `json:"role"`
	Members []MemberResponse        `json:"members"`
	Prompts []prompt.PromptResponse `json:"prompts"`
}

// Detail is a circle with its members and prompts, as seen by Role.
type Detail struct {
	Circle  Circle
	Role    access.Role
	Members []MemberProfile
	Prompts []prompt.Listing
}

func ToCircleResponse(c *Circle) CircleResponse {
	return CircleResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedBy:   c.CreatedBy,
		IsArchived:  c.IsArchived,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ToSummaryResponseList(summaries []Summary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(summaries))
	for i := range summaries {
		s := &summaries[i]
		out = append(out, SummaryResponse{
			CircleResponse: ToCircleResponse(&s.Circle),
			Role:           s.Role,
			MemberCount:    s.MemberCount,
			PieceCount:     s.PieceCount,
		})
	}
	return out
}

func ToMemberResponse(m *MemberProfile) MemberResponse {
	return MemberResponse{
		ID:       m.ID,
		CircleID: m.CircleID,
		UserID:   m.UserID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
		User: MemberUser{
			ID:        m.UserID,
			Username:  m.Username,
			Name:      m.Name,
			AvatarURL: m.AvatarURL,
		},
	}
}

func ToDetailResponse(d *Detail) DetailResponse {
	members := make([]MemberResponse, 0, len(d.Members))
	for i := range d.Members {
		members = append(members, ToMemberResponse(&d.Members[i]))
	}

	return DetailResponse{
		CircleResponse: ToCircleResponse(&d.Circle),
		Role:           d.Role,
		Members:        members,
		Prompts:        prompt.ToPromptResponseList(d.Prompts),
	}
}
