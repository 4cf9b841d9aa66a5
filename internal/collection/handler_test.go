// AngelaMos | 2026
// handler_test.go

package collection_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/collection"
	"github.com/carterperez-dev/riff/internal/core/coretest"
)

func TestHandlerCollectionLifecycle(t *testing.T) {
	db := coretest.NewDatabase(t)

	r := chi.NewRouter()
	collection.NewHandler(collection.NewService(
		collection.NewRepository(db.DB),
		access.NewResolver(db.DB),
	)).RegisterRoutes(r, coretest.HeaderAuth)

	reader := coretest.CreateUser(t, db, "reader")
	writer := coretest.CreateUser(t, db, "writer")
	stranger := coretest.CreateUser(t, db, "stranger")

	circle := coretest.CreateCircle(t, db, reader, "Writers")
	coretest.AddMember(t, db, circle, writer, "MEMBER")
	shared := coretest.CreatePiece(t, db, writer, "Shared")
	coretest.SharePiece(t, db, shared, circle)
	private := coretest.CreatePiece(t, db, writer, "Private")

	rec, body := coretest.Do(t, r, http.MethodPost, "/collections", `{}`, reader)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", body["error"])

	rec, body = coretest.Do(t, r, http.MethodPost, "/collections",
		`{"name":"Favourites"}`, reader)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := body["collection"].(map[string]any)
	assert.Equal(t, "Favourites", created["name"])
	assert.Equal(t, reader, created["ownerId"])
	base := "/collections/" + created["id"].(string)

	rec, body = coretest.Do(t, r, http.MethodPost, base+"/pieces",
		fmt.Sprintf(`{"pieceId":%q}`, shared), reader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Piece added to collection", body["message"])

	rec, body = coretest.Do(t, r, http.MethodPost, base+"/pieces",
		fmt.Sprintf(`{"pieceId":%q}`, private), reader)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You do not have permission to view this piece", body["error"])

	rec, body = coretest.Do(t, r, http.MethodPost, base+"/pieces", `{}`, reader)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "pieceId is required", body["error"])

	rec, body = coretest.Do(t, r, http.MethodGet, base, "", reader)
	require.Equal(t, http.StatusOK, rec.Code)
	pieces := body["collection"].(map[string]any)["pieces"].([]any)
	require.Len(t, pieces, 1)
	assert.Equal(t, "Shared", pieces[0].(map[string]any)["title"])

	rec, body = coretest.Do(t, r, http.MethodGet, "/collections", "", reader)
	require.Equal(t, http.StatusOK, rec.Code)
	list := body["collections"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, float64(1), list[0].(map[string]any)["pieceCount"])

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, base},
		{http.MethodDelete, base},
		{http.MethodDelete, base + "/pieces/" + shared},
	} {
		rec, body = coretest.Do(t, r, req.method, req.path, "", stranger)
		assert.Equal(t, http.StatusForbidden, rec.Code, req.method+" "+req.path)
		assert.Equal(t, "You do not own this collection", body["error"])
	}

	rec, body = coretest.Do(t, r, http.MethodDelete, base+"/pieces/"+shared, "", reader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Piece removed from collection", body["message"])

	rec, body = coretest.Do(t, r, http.MethodDelete, base, "", reader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Collection deleted successfully", body["message"])

	rec, _ = coretest.Do(t, r, http.MethodGet, base, "", reader)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = coretest.Do(t, r, http.MethodGet, "/collections", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
