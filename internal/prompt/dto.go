// AngelaMos | 2026
// dto.go

package prompt

import (
	"strings"
	"time"

	"github.com/carterperez-dev/riff/internal/core"
)

type CreatePromptRequest struct {
	Title          string  `json:"title"          validate:"required,max=200"`
	Description    *string `json:"description"`
	IsFreeform     bool    `json:"isFreeform"`
	Deadline       *string `json:"deadline"`
	VisibilityRule string  `json:"visibilityRule"`
}

// UpdatePromptRequest leaves absent fields unchanged. Description and
// deadline are cleared by null or "".
type UpdatePromptRequest struct {
	Title          *string               `json:"title,omitempty"`
	Description    core.Nullable[string] `json:"description"`
	IsFreeform     *bool                 `json:"isFreeform,omitempty"`
	Deadline       core.Nullable[string] `json:"deadline"`
	VisibilityRule *string               `json:"visibilityRule,omitempty"`
}

type AuthorSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type PromptResponse struct {
	ID              string         `json:"id"`
	CircleID        string         `json:"circleId"`
	Title           string         `json:"title"`
	Description     *string        `json:"description"`
	IsFreeform      bool           `json:"isFreeform"`
	Deadline        *time.Time     `json:"deadline"`
	VisibilityRule  VisibilityRule `json:"visibilityRule"`
	CreatedBy       AuthorSummary  `json:"createdBy"`
	SubmissionCount int            `json:"submissionCount"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func ToPromptResponse(l *Listing) PromptResponse {
	return PromptResponse{
		ID:             l.ID,
		CircleID:       l.CircleID,
		Title:          l.Title,
		Description:    l.Description,
		IsFreeform:     l.IsFreeform,
		Deadline:       l.Deadline,
		VisibilityRule: l.VisibilityRule,
		CreatedBy: AuthorSummary{
			ID:       l.CreatedBy,
			Username: l.AuthorUsername,
			Name:     l.AuthorName,
		},
		SubmissionCount: l.SubmissionCount,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func ToPromptResponseList(listings []Listing) []PromptResponse {
	out := make([]PromptResponse, 0, len(listings))
	for i := range listings {
		out = append(out, ToPromptResponse(&listings[i]))
	}
	return out
}

var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDeadline accepts RFC 3339, a datetime-local value or a bare date.
// Zone-less values are taken as UTC. A blank string means no deadline.
func ParseDeadline(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}

	return nil, core.ValidationError("Invalid deadline")
}
