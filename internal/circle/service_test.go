// AngelaMos | 2026
// service_test.go

package circle_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/circle"
	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/core/coretest"
	"github.com/carterperez-dev/riff/internal/prompt"
	"github.com/carterperez-dev/riff/internal/user"
)

type fixture struct {
	db       *core.Database
	service  *circle.Service
	resolver *access.Resolver
	owner    string
	admin    string
	member   string
	outsider string
	circle   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := coretest.NewDatabase(t)
	f := &fixture{
		db: db,
		service: circle.NewService(
			circle.NewRepository(db.DB),
			user.NewService(user.NewRepository(db.DB)),
			prompt.NewRepository(db.DB),
		),
		resolver: access.NewResolver(db.DB),
		owner:    coretest.CreateUser(t, db, "owner"),
		admin:    coretest.CreateUser(t, db, "admin"),
		member:   coretest.CreateUser(t, db, "member"),
		outsider: coretest.CreateUser(t, db, "outsider"),
	}
	f.circle = coretest.CreateCircle(t, db, f.owner, "Writers")
	coretest.AddMember(t, db, f.circle, f.admin, "ADMIN")
	coretest.AddMember(t, db, f.circle, f.member, "MEMBER")

	return f
}

func (f *fixture) role(t *testing.T, userID string) access.Role {
	t.Helper()

	role, err := f.resolver.Role(context.Background(), f.circle, userID)
	require.NoError(t, err)
	return role
}

func (f *fixture) owners(t *testing.T) int {
	t.Helper()

	return coretest.Count(t, f.db,
		`SELECT COUNT(*) FROM circle_members WHERE circle_id = ? AND role = ?`,
		f.circle, "OWNER",
	)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func statusOf(t *testing.T, err error) int {
	t.Helper()

	appErr, ok := core.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.StatusCode
}

func TestCreateCircle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("creator becomes sole owner", func(t *testing.T) {
		detail, err := f.service.Create(ctx, f.member, circle.CreateCircleRequest{
			Name:        "  Poetry Night ",
			Description: strPtr("   "),
		})
		require.NoError(t, err)

		assert.Equal(t, "Poetry Night", detail.Circle.Name)
		assert.Nil(t, detail.Circle.Description)
		assert.Equal(t, access.RoleOwner, detail.Role)
		require.Len(t, detail.Members, 1)
		assert.Equal(t, f.member, detail.Members[0].UserID)
		assert.Equal(t, access.RoleOwner, detail.Members[0].Role)
		assert.Equal(t, "member", detail.Members[0].Username)
		assert.Empty(t, detail.Prompts)
	})

	t.Run("rejects blank and long names", func(t *testing.T) {
		_, err := f.service.Create(ctx, f.member, circle.CreateCircleRequest{Name: "   "})
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

		long := make([]rune, circle.MaxNameLength+1)
		for i := range long {
			long[i] = 'a'
		}
		_, err = f.service.Create(ctx, f.member, circle.CreateCircleRequest{Name: string(long)})
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})
}

func TestListCircles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	archived := coretest.CreateCircle(t, f.db, f.member, "Old")
	_, err := f.service.Update(ctx, archived, f.member, circle.UpdateCircleRequest{
		IsArchived: boolPtr(true),
	})
	require.NoError(t, err)

	piece := coretest.CreatePiece(t, f.db, f.owner, "Essay")
	coretest.SharePiece(t, f.db, piece, f.circle)

	circles, err := f.service.List(ctx, f.member, false)
	require.NoError(t, err)
	require.Len(t, circles, 1)
	assert.Equal(t, f.circle, circles[0].ID)
	assert.Equal(t, access.RoleMember, circles[0].Role)
	assert.Equal(t, 3, circles[0].MemberCount)
	assert.Equal(t, 1, circles[0].PieceCount)

	circles, err = f.service.List(ctx, f.member, true)
	require.NoError(t, err)
	assert.Len(t, circles, 2)

	circles, err = f.service.List(ctx, f.outsider, true)
	require.NoError(t, err)
	assert.Empty(t, circles)
}

func TestGetCircle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	detail, err := f.service.Get(ctx, f.circle, f.member)
	require.NoError(t, err)
	assert.Equal(t, access.RoleMember, detail.Role)
	assert.Len(t, detail.Members, 3)

	_, err = f.service.Get(ctx, f.circle, f.outsider)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = f.service.Get(ctx, "00000000-0000-0000-0000-000000000000", f.member)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestUpdateCircle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("admin edits details", func(t *testing.T) {
		detail, err := f.service.Update(ctx, f.circle, f.admin, circle.UpdateCircleRequest{
			Name:        strPtr("Renamed"),
			Description: core.Nullable[string]{Set: true, Value: strPtr("About us")},
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", detail.Circle.Name)
		require.NotNil(t, detail.Circle.Description)
		assert.Equal(t, "About us", *detail.Circle.Description)
	})

	t.Run("null description clears it", func(t *testing.T) {
		detail, err := f.service.Update(ctx, f.circle, f.owner, circle.UpdateCircleRequest{
			Description: core.Nullable[string]{Set: true},
		})
		require.NoError(t, err)
		assert.Nil(t, detail.Circle.Description)
		assert.Equal(t, "Renamed", detail.Circle.Name)
	})

	t.Run("member cannot edit", func(t *testing.T) {
		_, err := f.service.Update(ctx, f.circle, f.member, circle.UpdateCircleRequest{
			Name: strPtr("Mine"),
		})
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	})

	t.Run("only owner archives", func(t *testing.T) {
		_, err := f.service.Update(ctx, f.circle, f.admin, circle.UpdateCircleRequest{
			IsArchived: boolPtr(true),
		})
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))

		detail, err := f.service.Update(ctx, f.circle, f.owner, circle.UpdateCircleRequest{
			IsArchived: boolPtr(true),
		})
		require.NoError(t, err)
		assert.True(t, detail.Circle.IsArchived)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := f.service.Update(ctx, f.circle, f.owner, circle.UpdateCircleRequest{
			Name: strPtr(" "),
		})
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})
}

func TestInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("by username defaults to member", func(t *testing.T) {
		f := newFixture(t)

		m, err := f.service.Invite(ctx, f.circle, f.member, circle.InviteRequest{
			Username: "outsider",
		})
		require.NoError(t, err)
		assert.Equal(t, f.outsider, m.UserID)
		assert.Equal(t, access.RoleMember, m.Role)
		assert.Equal(t, "outsider", m.Username)
	})

	t.Run("rejection cases", func(t *testing.T) {
		f := newFixture(t)
		stranger := coretest.CreateUser(t, f.db, "stranger")

		tests := []struct {
			name    string
			inviter string
			req     circle.InviteRequest
			status  int
		}{
			{"no invitee", f.owner, circle.InviteRequest{}, http.StatusBadRequest},
			{"non member inviter", f.outsider, circle.InviteRequest{UserID: stranger}, http.StatusForbidden},
			{"unknown username", f.owner, circle.InviteRequest{Username: "ghost"}, http.StatusNotFound},
			{"unknown id", f.owner, circle.InviteRequest{UserID: "not-a-uuid"}, http.StatusNotFound},
			{"already member", f.owner, circle.InviteRequest{UserID: f.member}, http.StatusBadRequest},
			{"invalid role", f.owner, circle.InviteRequest{UserID: stranger, Role: "EDITOR"}, http.StatusBadRequest},
			{"owner role by admin", f.admin, circle.InviteRequest{UserID: stranger, Role: "OWNER"}, http.StatusForbidden},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.service.Invite(ctx, f.circle, tt.inviter, tt.req)
				assert.Equal(t, tt.status, statusOf(t, err))
			})
		}
	})

	t.Run("owner role transfers ownership", func(t *testing.T) {
		f := newFixture(t)

		m, err := f.service.Invite(ctx, f.circle, f.owner, circle.InviteRequest{
			UserID: f.outsider,
			Role:   "OWNER",
		})
		require.NoError(t, err)
		assert.Equal(t, access.RoleOwner, m.Role)
		assert.Equal(t, access.RoleAdmin, f.role(t, f.owner))
		assert.Equal(t, 1, f.owners(t))
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("permission matrix", func(t *testing.T) {
		f := newFixture(t)
		other := coretest.CreateUser(t, f.db, "other")
		coretest.AddMember(t, f.db, f.circle, other, "ADMIN")

		tests := []struct {
			name    string
			remover string
			target  string
			status  int
		}{
			{"member cannot remove", f.member, f.admin, http.StatusForbidden},
			{"owner is never removed", f.admin, f.owner, http.StatusForbidden},
			{"admin cannot remove admin", f.admin, other, http.StatusForbidden},
			{"target not member", f.owner, f.outsider, http.StatusNotFound},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := f.service.RemoveMember(ctx, f.circle, tt.remover, tt.target)
				assert.Equal(t, tt.status, statusOf(t, err))
			})
		}
	})

	t.Run("admin removes member and owner removes admin", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.service.RemoveMember(ctx, f.circle, f.admin, f.member))
		assert.Equal(t, access.Role(""), f.role(t, f.member))

		require.NoError(t, f.service.RemoveMember(ctx, f.circle, f.owner, f.admin))
		assert.Equal(t, access.Role(""), f.role(t, f.admin))
	})
}

func TestLeave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Leave(ctx, f.circle, f.member))
	assert.Equal(t, access.Role(""), f.role(t, f.member))

	err := f.service.Leave(ctx, f.circle, f.member)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	err = f.service.Leave(ctx, f.circle, f.owner)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	assert.Equal(t, access.RoleOwner, f.role(t, f.owner))
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()

	t.Run("owner promotes member", func(t *testing.T) {
		f := newFixture(t)

		m, err := f.service.SetRole(ctx, f.circle, f.owner, circle.SetRoleRequest{
			UserID: f.member,
			Role:   "ADMIN",
		})
		require.NoError(t, err)
		assert.Equal(t, access.RoleAdmin, m.Role)
	})

	t.Run("ownership transfer keeps one owner", func(t *testing.T) {
		f := newFixture(t)

		m, err := f.service.SetRole(ctx, f.circle, f.owner, circle.SetRoleRequest{
			UserID: f.member,
			Role:   "OWNER",
		})
		require.NoError(t, err)
		assert.Equal(t, access.RoleOwner, m.Role)
		assert.Equal(t, access.RoleAdmin, f.role(t, f.owner))
		assert.Equal(t, 1, f.owners(t))

		_, err = f.service.SetRole(ctx, f.circle, f.owner, circle.SetRoleRequest{
			UserID: f.admin,
			Role:   "MEMBER",
		})
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	})

	t.Run("rejection cases", func(t *testing.T) {
		f := newFixture(t)

		tests := []struct {
			name      string
			requester string
			req       circle.SetRoleRequest
			status    int
		}{
			{"admin cannot set roles", f.admin, circle.SetRoleRequest{UserID: f.member, Role: "ADMIN"}, http.StatusForbidden},
			{"invalid role", f.owner, circle.SetRoleRequest{UserID: f.member, Role: "KING"}, http.StatusBadRequest},
			{"target not member", f.owner, circle.SetRoleRequest{UserID: f.outsider, Role: "ADMIN"}, http.StatusNotFound},
			{"own role", f.owner, circle.SetRoleRequest{UserID: f.owner, Role: "MEMBER"}, http.StatusBadRequest},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.service.SetRole(ctx, f.circle, tt.requester, tt.req)
				assert.Equal(t, tt.status, statusOf(t, err))
			})
		}
		assert.Equal(t, access.RoleOwner, f.role(t, f.owner))
	})
}
