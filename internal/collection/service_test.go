// AngelaMos | 2026
// service_test.go

package collection_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/collection"
	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/core/coretest"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()

	appErr, ok := core.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.StatusCode
}

func TestCollections(t *testing.T) {
	db := coretest.NewDatabase(t)
	ctx := context.Background()
	service := collection.NewService(
		collection.NewRepository(db.DB),
		access.NewResolver(db.DB),
	)

	reader := coretest.CreateUser(t, db, "reader")
	writer := coretest.CreateUser(t, db, "writer")
	stranger := coretest.CreateUser(t, db, "stranger")

	circle := coretest.CreateCircle(t, db, reader, "Writers")
	coretest.AddMember(t, db, circle, writer, "MEMBER")

	shared := coretest.CreatePiece(t, db, writer, "Shared")
	coretest.SharePiece(t, db, shared, circle)
	private := coretest.CreatePiece(t, db, writer, "Private")
	own := coretest.CreatePiece(t, db, reader, "Mine")

	_, err := service.Create(ctx, reader, collection.CreateCollectionRequest{Name: " "})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	c, err := service.Create(ctx, reader, collection.CreateCollectionRequest{
		Name: "Favourites",
	})
	require.NoError(t, err)

	t.Run("add visible pieces", func(t *testing.T) {
		require.NoError(t, service.AddPiece(ctx, c.ID, reader, shared))
		require.NoError(t, service.AddPiece(ctx, c.ID, reader, own))

		err := service.AddPiece(ctx, c.ID, reader, shared)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

		err = service.AddPiece(ctx, c.ID, reader, private)
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))

		err = service.AddPiece(ctx, c.ID, reader, "missing")
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("only the owner may touch it", func(t *testing.T) {
		_, err := service.Get(ctx, c.ID, stranger)
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))

		err = service.AddPiece(ctx, c.ID, stranger, own)
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))

		err = service.Delete(ctx, c.ID, stranger)
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))

		_, err = service.Get(ctx, "missing", reader)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("unshared pieces drop out of the detail", func(t *testing.T) {
		detail, err := service.Get(ctx, c.ID, reader)
		require.NoError(t, err)
		assert.Len(t, detail.Pieces, 2)

		_, err = db.DB.ExecContext(ctx, db.DB.Rebind(
			`DELETE FROM piece_shares WHERE piece_id = ?`), shared)
		require.NoError(t, err)

		detail, err = service.Get(ctx, c.ID, reader)
		require.NoError(t, err)
		require.Len(t, detail.Pieces, 1)
		assert.Equal(t, own, detail.Pieces[0].PieceID)
	})

	t.Run("remove and list", func(t *testing.T) {
		require.NoError(t, service.RemovePiece(ctx, c.ID, reader, own))

		err := service.RemovePiece(ctx, c.ID, reader, own)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))

		list, err := service.List(ctx, reader)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 1, list[0].PieceCount)
	})

	t.Run("delete cascades entries", func(t *testing.T) {
		require.NoError(t, service.Delete(ctx, c.ID, reader))
		assert.Zero(t, coretest.Count(t, db,
			`SELECT COUNT(*) FROM collection_pieces WHERE collection_id = ?`, c.ID))
	})
}
