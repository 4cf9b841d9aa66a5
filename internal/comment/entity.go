// AngelaMos | 2026
// entity.go

package comment

import (
	"time"
)

// Comment is anchored to a frozen version, never to the live draft. A nil
// CircleID marks a direct comment that only the piece author can write.
type Comment struct {
	ID             string    `db:"id"`
	PieceID        string    `db:"piece_id"`
	VersionID      string    `db:"version_id"`
	CircleID       *string   `db:"circle_id"`
	AuthorID       string    `db:"author_id"`
	ParentID       *string   `db:"parent_id"`
	Content        string    `db:"content"`
	SelectionStart *int      `db:"selection_start"`
	SelectionEnd   *int      `db:"selection_end"`
	SelectedText   *string   `db:"selected_text"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type Listing struct {
	Comment
	AuthorUsername  string  `db:"author_username"`
	AuthorName      string  `db:"author_name"`
	AuthorAvatarURL *string `db:"author_avatar_url"`
}

type ListFilter struct {
	PieceID   string
	VersionID string
	CircleID  string
}
