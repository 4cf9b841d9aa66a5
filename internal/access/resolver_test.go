// AngelaMos | 2026
// resolver_test.go

package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/core/coretest"
)

func TestRole(t *testing.T) {
	assert.True(t, access.RoleOwner.Valid())
	assert.True(t, access.RoleMember.Valid())
	assert.False(t, access.Role("owner").Valid())
	assert.False(t, access.Role("").Valid())

	assert.True(t, access.RoleOwner.CanManage())
	assert.True(t, access.RoleAdmin.CanManage())
	assert.False(t, access.RoleMember.CanManage())
}

func TestResolver(t *testing.T) {
	db := coretest.NewDatabase(t)
	ctx := context.Background()
	r := access.NewResolver(db.DB)

	author := coretest.CreateUser(t, db, "author")
	reader := coretest.CreateUser(t, db, "reader")
	outsider := coretest.CreateUser(t, db, "outsider")

	writers := coretest.CreateCircle(t, db, author, "Writers")
	coretest.AddMember(t, db, writers, reader, "MEMBER")
	empty := coretest.CreateCircle(t, db, outsider, "Empty")

	shared := coretest.CreatePiece(t, db, author, "Shared")
	draft := coretest.CreatePiece(t, db, author, "Draft")
	coretest.SharePiece(t, db, shared, writers)

	role, err := r.Role(ctx, writers, reader)
	require.NoError(t, err)
	assert.Equal(t, access.RoleMember, role)

	role, err = r.Role(ctx, writers, outsider)
	require.NoError(t, err)
	assert.Empty(t, role)

	exists, err := r.CircleExists(ctx, empty)
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("piece visibility", func(t *testing.T) {
		ok, err := r.CanViewPiece(ctx, shared, author)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.CanViewPiece(ctx, shared, reader)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.CanViewPiece(ctx, shared, outsider)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = r.CanViewPiece(ctx, draft, reader)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = r.CanViewPiece(ctx, "missing", reader)
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("shares", func(t *testing.T) {
		ok, err := r.IsSharedTo(ctx, shared, writers)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.IsSharedTo(ctx, shared, empty)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = r.SharesWith(ctx, author, reader)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.SharesWith(ctx, author, outsider)
		require.NoError(t, err)
		assert.False(t, ok)

		circles, err := r.SharedCircles(ctx, shared, reader)
		require.NoError(t, err)
		assert.Equal(t, []string{writers}, circles)
	})

	t.Run("member circles", func(t *testing.T) {
		ids, err := r.MemberCircleIDs(ctx, outsider)
		require.NoError(t, err)
		assert.Equal(t, []string{empty}, ids)
	})
}
