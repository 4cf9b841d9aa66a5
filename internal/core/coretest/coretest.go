// AngelaMos | 2026
// coretest.go

// Package coretest provides a migrated in-memory database and row
// fixtures for package tests.
package coretest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/config"
	"github.com/carterperez-dev/riff/internal/core"
)

func NewDatabase(t testing.TB) *core.Database {
	t.Helper()

	ctx := context.Background()

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    ":memory:",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close() //nolint:errcheck // test cleanup
	})

	require.NoError(t, db.Migrate(ctx))

	return db
}

// CreateUser inserts a user row directly and returns its id.
func CreateUser(t testing.TB, db *core.Database, username string) string {
	t.Helper()

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := db.DB.ExecContext(context.Background(), db.DB.Rebind(`
		INSERT INTO users (
			id, email, username, password_hash, name, token_version,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, 0, ?, ?)`),
		id,
		username+"@example.com",
		username,
		"not-a-real-hash",
		username,
		now,
		now,
	)
	require.NoError(t, err)

	return id
}

func Count(t testing.TB, db *core.Database, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, db.DB.GetContext(
		context.Background(),
		&n,
		db.DB.Rebind(query),
		args...,
	))

	return n
}

func exec(t testing.TB, db *core.Database, query string, args ...any) {
	t.Helper()

	_, err := db.DB.ExecContext(context.Background(), db.DB.Rebind(query), args...)
	require.NoError(t, err)
}

// CreateCircle inserts a circle owned by ownerID and returns its id.
func CreateCircle(t testing.TB, db *core.Database, ownerID, name string) string {
	t.Helper()

	id := uuid.New().String()
	now := time.Now().UTC()

	exec(t, db, `
		INSERT INTO circles (
			id, name, created_by, is_archived, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, ownerID, false, now, now,
	)
	AddMember(t, db, id, ownerID, "OWNER")

	return id
}

func AddMember(t testing.TB, db *core.Database, circleID, userID, role string) {
	t.Helper()

	exec(t, db, `
		INSERT INTO circle_members (id, circle_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), circleID, userID, role, time.Now().UTC(),
	)
}

func CreatePiece(t testing.TB, db *core.Database, authorID, title string) string {
	t.Helper()

	id := uuid.New().String()
	now := time.Now().UTC()

	exec(t, db, `
		INSERT INTO pieces (
			id, author_id, title, current_content, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		id, authorID, title, "<p>"+title+"</p>", now, now,
	)

	return id
}

// SharePiece freezes the next version of the piece and shares it to the
// circle. It returns the version id.
func SharePiece(t testing.TB, db *core.Database, pieceID, circleID string) string {
	t.Helper()

	next := Count(t, db,
		`SELECT COALESCE(MAX(version_number), 0) + 1 FROM piece_versions WHERE piece_id = ?`,
		pieceID,
	)

	versionID := uuid.New().String()
	now := time.Now().UTC()

	exec(t, db, `
		INSERT INTO piece_versions (
			id, piece_id, version_number, title, content, created_at
		)
		SELECT ?, id, ?, title, current_content, ? FROM pieces WHERE id = ?`,
		versionID, next, now, pieceID,
	)
	exec(t, db, `
		INSERT INTO piece_shares (
			id, piece_id, circle_id, version_id, is_visible, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), pieceID, circleID, versionID, true, now,
	)

	return versionID
}

// CreateComment inserts a top-level comment on the version in circleID
// and returns its id.
func CreateComment(
	t testing.TB,
	db *core.Database,
	pieceID, versionID, circleID, authorID string,
) string {
	t.Helper()

	id := uuid.New().String()
	now := time.Now().UTC()

	exec(t, db, `
		INSERT INTO comments (
			id, piece_id, version_id, circle_id, author_id, content,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, pieceID, versionID, circleID, authorID, "<p>nice</p>", now, now,
	)

	return id
}
