// AngelaMos | 2026
// handler_test.go

package prompt_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/core/coretest"
	"github.com/carterperez-dev/riff/internal/prompt"
)

func TestHandlerPromptLifecycle(t *testing.T) {
	f := newFixture(t)
	r := chi.NewRouter()
	prompt.NewHandler(f.service).RegisterRoutes(r, coretest.HeaderAuth)
	base := "/circles/" + f.circle + "/prompts"

	rec, body := coretest.Do(t, r, http.MethodPost, base,
		`{"title":"Childhood","deadline":"2026-12-01","visibilityRule":"AFTER_DEADLINE"}`,
		f.admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := body["prompt"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "AFTER_DEADLINE", created["visibilityRule"])
	assert.NotNil(t, created["deadline"])

	rec, body = coretest.Do(t, r, http.MethodPost, base, `{"title":"Nope"}`, f.member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotEmpty(t, body["error"])

	rec, body = coretest.Do(t, r, http.MethodPost, base, `{"description":"x"}`, f.owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", body["error"])

	rec, body = coretest.Do(t, r, http.MethodPatch, base+"/"+id,
		`{"title":"Growing up","deadline":null}`, f.owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := body["prompt"].(map[string]any)
	assert.Equal(t, "Growing up", updated["title"])
	assert.Nil(t, updated["deadline"])

	rec, _ = coretest.Do(t, r, http.MethodPatch, base+"/"+id, `{"title":`, f.owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = coretest.Do(t, r, http.MethodGet, base, "", f.member)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["prompts"], 1)

	rec, body = coretest.Do(t, r, http.MethodDelete, base+"/"+id, "", f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Prompt deleted successfully", body["message"])

	rec, _ = coretest.Do(t, r, http.MethodDelete, base+"/"+id, "", f.admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
