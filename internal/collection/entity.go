// AngelaMos | 2026
// entity.go

package collection

import (
	"time"
)

type Collection struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"owner_id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Summary struct {
	Collection
	PieceCount int `db:"piece_count"`
}

// Entry is a collected piece, reduced to what any viewer of the piece may
// see.
type Entry struct {
	PieceID        string    `db:"piece_id"`
	Title          string    `db:"title"`
	AuthorID       string    `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	AuthorName     string    `db:"author_name"`
	AddedAt        time.Time `db:"added_at"`
}

type Detail struct {
	Collection
	Pieces []Entry
}

const MaxNameLength = 100
