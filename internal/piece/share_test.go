// AngelaMos | 2026
// share_test.go

package piece_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/core/coretest"
	"github.com/carterperez-dev/riff/internal/piece"
	"github.com/carterperez-dev/riff/internal/prompt"
)

// beforeTx runs hook just before the share transaction opens.
type beforeTx struct {
	piece.Repository
	hook func()
}

func (r *beforeTx) InTx(ctx context.Context, fn func(piece.Repository) error) error {
	r.hook()
	return r.Repository.InTx(ctx, fn)
}

// staleCounter hands out an already used version number inside the
// transaction, as a concurrent share would.
type staleCounter struct {
	piece.Repository
}

func (r *staleCounter) InTx(ctx context.Context, fn func(piece.Repository) error) error {
	return r.Repository.InTx(ctx, func(tx piece.Repository) error {
		return fn(staleVersion{tx})
	})
}

type staleVersion struct {
	piece.Repository
}

func (staleVersion) NextVersionNumber(context.Context, string) (int, error) {
	return 1, nil
}

func newShareService(db *core.Database, repo piece.Repository) *piece.Service {
	resolver := access.NewResolver(db.DB)
	return piece.NewService(
		repo,
		resolver,
		prompt.NewService(prompt.NewRepository(db.DB), resolver),
		core.NewSanitizer(),
	)
}

func TestShareFreezesContentReadInsideTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, "Draft", "<p>before</p>")

	repo := &beforeTx{
		Repository: piece.NewRepository(f.db.DB),
		hook: func() {
			_, err := f.db.DB.ExecContext(ctx, f.db.DB.Rebind(
				`UPDATE pieces SET current_content = ? WHERE id = ?`),
				"<p>after</p>", id)
			require.NoError(t, err)
		},
	}

	share, err := newShareService(f.db, repo).Share(ctx, id, f.author,
		piece.ShareRequest{CircleID: f.circle})
	require.NoError(t, err)
	assert.Equal(t, "<p>after</p>", share.Version.Content)
}

func TestShareVersionCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, "Draft", "<p>hello</p>")
	f.share(t, id)

	other := coretest.CreateCircle(t, f.db, f.author, "Other")

	svc := newShareService(f.db, &staleCounter{piece.NewRepository(f.db.DB)})
	_, err := svc.Share(ctx, id, f.author, piece.ShareRequest{CircleID: other})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.NotEqual(t, "Piece is already shared to this circle", appErr.Message)
	assert.Contains(t, appErr.Message, "Another version")

	assert.Zero(t, coretest.Count(t, f.db,
		`SELECT COUNT(*) FROM piece_shares WHERE circle_id = ?`, other))
}
