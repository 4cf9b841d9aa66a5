// AngelaMos | 2026
// service_test.go

package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/core/coretest"
	"github.com/carterperez-dev/riff/internal/user"
)

func newService(t *testing.T) (*user.Service, *core.Database) {
	t.Helper()

	db := coretest.NewDatabase(t)
	return user.NewService(user.NewRepository(db.DB)), db
}

func decodeUpdate(t *testing.T, body string) user.UpdateUserRequest {
	t.Helper()

	var req user.UpdateUserRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestUpdateMe(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	id := coretest.CreateUser(t, db, "hana")

	u, err := svc.UpdateMe(ctx, id, decodeUpdate(t,
		`{"name":"Hana K","bio":"  writes at night ","avatarUrl":"/uploads/images/a.png"}`))
	require.NoError(t, err)
	assert.Equal(t, "Hana K", u.Name)
	require.NotNil(t, u.Bio)
	assert.Equal(t, "writes at night", *u.Bio)
	require.NotNil(t, u.AvatarURL)

	u, err = svc.UpdateMe(ctx, id, decodeUpdate(t, `{"name":"Hana"}`))
	require.NoError(t, err)
	assert.NotNil(t, u.Bio, "absent field must be left alone")

	u, err = svc.UpdateMe(ctx, id, decodeUpdate(t, `{"bio":null,"avatarUrl":""}`))
	require.NoError(t, err)
	assert.Nil(t, u.Bio)
	assert.Nil(t, u.AvatarURL)

	stored, err := svc.GetMe(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, stored.Bio)
	assert.Equal(t, "Hana", stored.Name)

	_, err = svc.UpdateMe(ctx, id, decodeUpdate(t, `{"name":"   "}`))
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestGetByUsername(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	id := coretest.CreateUser(t, db, "ivan")

	u, err := svc.GetByUsername(ctx, "ivan")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	_, err = svc.GetByUsername(ctx, "nobody")
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, "User not found", appErr.Message)
}

func TestUserLookup(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	id := coretest.CreateUser(t, db, "jo_99")

	exists, err := svc.UserExists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.UserExists(ctx, "jo_99")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := svc.UserIDByUsername(ctx, "jo_99")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = svc.UserIDByUsername(ctx, "missing")
	require.ErrorIs(t, err, core.ErrNotFound)
}
