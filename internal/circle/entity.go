// AngelaMos | 2026
// entity.go

package circle

import (
	"time"

	"github.com/carterperez-dev/riff/internal/access"
)

type Circle struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CreatedBy   string    `db:"created_by"`
	IsArchived  bool      `db:"is_archived"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Member struct {
	ID       string      `db:"id"`
	CircleID string      `db:"circle_id"`
	UserID   string      `db:"user_id"`
	Role     access.Role `db:"role"`
	JoinedAt time.Time   `db:"joined_at"`
}

// MemberProfile is a membership joined with the member's public profile.
type MemberProfile struct {
	Member
	Username  string  `db:"username"`
	Name      string  `db:"name"`
	AvatarURL *string `db:"avatar_url"`
}

// Summary is a circle as seen by one of its members.
type Summary struct {
	Circle
	Role        access.Role `db:"role"`
	MemberCount int         `db:"member_count"`
	PieceCount  int         `db:"piece_count"`
}

const MaxNameLength = 100
