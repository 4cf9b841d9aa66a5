// AngelaMos | 2026
// handler_test.go

package piece_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/core/coretest"
	"github.com/carterperez-dev/riff/internal/piece"
)

func newRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	piece.NewHandler(f.service).RegisterRoutes(r, coretest.HeaderAuth)
	return r
}

var do = coretest.Do

func TestHandlerDraftNeverLeaks(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	rec, body := do(t, h, http.MethodPost, "/pieces",
		`{"title":"Secret","content":"<p>frozen</p>"}`, f.author)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := body["piece"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "<p>frozen</p>", created["currentContent"])

	rec, body = do(t, h, http.MethodPost, "/pieces/"+id+"/share",
		`{"circleId":"`+f.circle+`"}`, f.author)
	require.Equal(t, http.StatusOK, rec.Code)
	share := body["share"].(map[string]any)
	assert.Equal(t, float64(1), share["version"].(map[string]any)["versionNumber"])

	rec, _ = do(t, h, http.MethodPatch, "/pieces/"+id+"/autosave",
		`{"currentContent":"<p>work in progress</p>"}`, f.author)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{
		"/pieces/" + id,
		"/pieces?circleId=" + f.circle,
		"/pieces?authorId=" + f.author,
		"/pieces/" + id + "/versions",
	} {
		rec, _ := do(t, h, http.MethodGet, path, "", f.reader)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "currentContent", path)
		assert.NotContains(t, rec.Body.String(), "work in progress", path)
		assert.NotContains(t, rec.Body.String(), "commentCount", path)
	}

	rec, body = do(t, h, http.MethodGet, "/pieces/"+id, "", f.author)
	require.Equal(t, http.StatusOK, rec.Code)
	own := body["piece"].(map[string]any)
	assert.Equal(t, "<p>work in progress</p>", own["currentContent"])
	assert.Equal(t, true, own["isAuthor"])
	assert.Equal(t, float64(0), own["commentCount"])
}

func TestHandlerErrors(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)
	id := f.create(t, "Essay", "<p>x</p>")

	rec, body := do(t, h, http.MethodGet, "/pieces/"+id, "", f.outsider)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You do not have permission to view this piece", body["error"])

	rec, _ = do(t, h, http.MethodPost, "/pieces/"+id+"/share", `{}`, f.author)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/pieces", `{not json`, f.author)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(t, h, http.MethodDelete, "/pieces/"+id, "", f.author)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Piece deleted successfully", body["message"])

	rec, body = do(t, h, http.MethodGet, "/pieces/"+id, "", f.author)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Piece not found", body["error"])
}
