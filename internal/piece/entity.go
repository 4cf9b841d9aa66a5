// AngelaMos | 2026
// entity.go

package piece

import (
	"time"
)

// Piece holds the author's live draft. Nobody but the author ever reads
// CurrentContent or CurrentExcerpt.
type Piece struct {
	ID             string    `db:"id"`
	AuthorID       string    `db:"author_id"`
	Title          string    `db:"title"`
	CurrentContent string    `db:"current_content"`
	CurrentExcerpt *string   `db:"current_excerpt"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Version is a frozen snapshot taken when the piece is shared. Rows are
// never updated.
type Version struct {
	ID            string    `db:"id"`
	PieceID       string    `db:"piece_id"`
	VersionNumber int       `db:"version_number"`
	Title         string    `db:"title"`
	Content       string    `db:"content"`
	Excerpt       *string   `db:"excerpt"`
	CreatedAt     time.Time `db:"created_at"`
}

type Share struct {
	ID          string    `db:"id"`
	PieceID     string    `db:"piece_id"`
	CircleID    string    `db:"circle_id"`
	VersionID   string    `db:"version_id"`
	PromptID    *string   `db:"prompt_id"`
	IsVisible   bool      `db:"is_visible"`
	SubmittedAt time.Time `db:"submitted_at"`
}

// ShareDetail is a share joined with its circle name, prompt title and
// the version it points at.
type ShareDetail struct {
	Share
	CircleName  string  `db:"circle_name"`
	PromptTitle *string `db:"prompt_title"`
	Version     Version `db:"version"`
}

// Summary is a piece joined with its author and dependent row counts.
type Summary struct {
	Piece
	AuthorUsername  string  `db:"author_username"`
	AuthorName      string  `db:"author_name"`
	AuthorAvatarURL *string `db:"author_avatar_url"`
	VersionCount    int     `db:"version_count"`
	ShareCount      int     `db:"share_count"`
	CommentCount    int     `db:"comment_count"`

	// Shares is filled only when listing a circle's pieces.
	Shares []ShareDetail `db:"-"`
}

// VersionListing is a version with the shares that point at it.
type VersionListing struct {
	Version
	Shares []ShareDetail `db:"-"`
}

// Detail is a piece as one viewer is allowed to see it.
type Detail struct {
	Summary
	IsAuthor bool
	Versions []VersionListing
	Shares   []ShareDetail
}

// ListFilter selects which pieces List returns. CircleID wins over
// AuthorID; neither means the caller's own pieces.
type ListFilter struct {
	AuthorID string
	CircleID string
}

const MaxTitleLength = 200
