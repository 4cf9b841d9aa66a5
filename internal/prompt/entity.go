// AngelaMos | 2026
// entity.go

package prompt

import (
	"time"
)

// VisibilityRule is stored with the prompt. Shares are visible as soon as
// they are submitted whatever the rule says.
type VisibilityRule string

const (
	VisibilityOnSubmit      VisibilityRule = "ON_SUBMIT"
	VisibilityAllSubmitted  VisibilityRule = "ALL_SUBMITTED"
	VisibilityAfterDeadline VisibilityRule = "AFTER_DEADLINE"
)

func (v VisibilityRule) Valid() bool {
	switch v {
	case VisibilityOnSubmit, VisibilityAllSubmitted, VisibilityAfterDeadline:
		return true
	}
	return false
}

type Prompt struct {
	ID             string         `db:"id"`
	CircleID       string         `db:"circle_id"`
	Title          string         `db:"title"`
	Description    *string        `db:"description"`
	IsFreeform     bool           `db:"is_freeform"`
	Deadline       *time.Time     `db:"deadline"`
	VisibilityRule VisibilityRule `db:"visibility_rule"`
	CreatedBy      string         `db:"created_by"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// Listing is a prompt joined with its author and the number of pieces
// submitted to it.
type Listing struct {
	Prompt
	AuthorUsername  string `db:"author_username"`
	AuthorName      string `db:"author_name"`
	SubmissionCount int    `db:"submission_count"`
}

const MaxTitleLength = 200
