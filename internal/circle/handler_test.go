// AngelaMos | 2026
// handler_test.go

package circle_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/circle"
	"github.com/carterperez-dev/riff/internal/core/coretest"
	"github.com/carterperez-dev/riff/internal/prompt"
)

// newRouter mounts prompts next to circles the way the API does.
func newRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	circle.NewHandler(f.service).RegisterRoutes(r, coretest.HeaderAuth)
	prompt.NewHandler(prompt.NewService(
		prompt.NewRepository(f.db.DB),
		f.resolver,
	)).RegisterRoutes(r, coretest.HeaderAuth)
	return r
}

func TestHandlerCreateAndList(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	rec, body := coretest.Do(t, h, http.MethodPost, "/circles",
		`{"name":"Readers","description":"weekly"}`, f.member)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := body["circle"].(map[string]any)
	assert.Equal(t, "Readers", created["name"])
	assert.Equal(t, string(access.RoleOwner), created["role"])
	assert.Len(t, created["members"], 1)

	rec, body = coretest.Do(t, h, http.MethodPost, "/circles", `{}`, f.member)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", body["error"])

	rec, body = coretest.Do(t, h, http.MethodGet, "/circles", "", f.member)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["circles"], 2)

	rec, body = coretest.Do(t, h, http.MethodPatch, "/circles/"+f.circle,
		`{"isArchived":true}`, f.owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["circle"].(map[string]any)["isArchived"])

	rec, body = coretest.Do(t, h, http.MethodGet, "/circles", "", f.member)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["circles"], 1)

	rec, body = coretest.Do(t, h, http.MethodGet, "/circles?includeArchived=true", "", f.member)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["circles"], 2)

	rec, body = coretest.Do(t, h, http.MethodGet, "/circles/"+f.circle, "", f.outsider)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You are not a member of this circle", body["error"])

	rec, _ = coretest.Do(t, h, http.MethodGet, "/circles", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlerMembership(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)
	base := "/circles/" + f.circle

	rec, body := coretest.Do(t, h, http.MethodPost, base+"/invite",
		`{"username":"outsider"}`, f.member)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	invited := body["member"].(map[string]any)
	assert.Equal(t, f.outsider, invited["userId"])
	assert.Equal(t, string(access.RoleMember), invited["role"])

	rec, body = coretest.Do(t, h, http.MethodPost, base+"/invite", `{}`, f.member)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User ID or username is required", body["error"])

	rec, body = coretest.Do(t, h, http.MethodPost, base+"/remove",
		fmt.Sprintf(`{"userId":%q}`, f.admin), f.member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotEmpty(t, body["error"])

	rec, body = coretest.Do(t, h, http.MethodPost, base+"/remove",
		fmt.Sprintf(`{"userId":%q}`, f.outsider), f.admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Member removed successfully", body["message"])

	rec, body = coretest.Do(t, h, http.MethodPost, base+"/leave", "", f.owner)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t,
		"Circle owner cannot leave. Transfer ownership or archive the circle first.",
		body["error"])

	rec, body = coretest.Do(t, h, http.MethodPatch, base+"/role",
		fmt.Sprintf(`{"userId":%q,"role":"OWNER"}`, f.admin), f.owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ownership transferred successfully", body["message"])
	assert.Equal(t, access.RoleAdmin, f.role(t, f.owner))
	assert.Equal(t, 1, f.owners(t))

	rec, body = coretest.Do(t, h, http.MethodPatch, base+"/role",
		fmt.Sprintf(`{"userId":%q,"role":"ADMIN"}`, f.member), f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["message"])

	rec, body = coretest.Do(t, h, http.MethodPost, base+"/leave", "", f.owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Left circle successfully", body["message"])
}

func TestHandlerPromptRoutesBesideCircleRoutes(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)
	base := "/circles/" + f.circle

	rec, body := coretest.Do(t, h, http.MethodPost, base+"/prompts",
		`{"title":"Childhood"}`, f.admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Childhood", body["prompt"].(map[string]any)["title"])

	rec, body = coretest.Do(t, h, http.MethodGet, base, "", f.member)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := body["circle"].(map[string]any)
	assert.Len(t, detail["prompts"], 1)
	assert.Len(t, detail["members"], 3)

	rec, body = coretest.Do(t, h, http.MethodGet, base+"/prompts", "", f.member)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["prompts"], 1)
}
