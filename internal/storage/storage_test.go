package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/scic/internal/config"
	"github.com/existflow/scic/internal/session"
)

// exerciseStore runs the behavior every backend must share
func exerciseStore(t *testing.T, s session.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, session.KeyIdentity)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, session.KeyIdentity, "a@b.com"))
	require.NoError(t, s.Set(ctx, session.KeyIssuedAt, "1740819600000"))
	require.NoError(t, s.Set(ctx, session.KeyIdentity, "c@d.com"))

	v, ok, err := s.Get(ctx, session.KeyIdentity)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c@d.com", v)

	require.NoError(t, s.Clear(ctx, session.KeyIdentity, session.KeyIssuedAt, session.KeyCookies))
	_, ok, err = s.Get(ctx, session.KeyIdentity)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Get(ctx, session.KeyIssuedAt)
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing absent keys is not an error
	require.NoError(t, s.Clear(ctx, session.KeyIdentity))
	require.NoError(t, s.Clear(ctx))
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStore(t, NewFile(path))
}

func TestFile_SharedBetweenInstancesWithPrivateMode(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, NewFile(path).Set(ctx, session.KeyIdentity, "a@b.com"))

	v, ok, err := NewFile(path).Get(ctx, session.KeyIdentity)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, _, err := NewFile(path).Get(context.Background(), session.KeyIdentity)
	assert.Error(t, err)
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQL(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLite_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "session.db")

	s, err := OpenSQL(ctx, DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, session.KeyIdentity, "a@b.com"))
	require.NoError(t, s.Close())

	s, err = OpenSQL(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, session.KeyIdentity)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", v)
}

func TestPostgres_Queries(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv_state")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO kv_state (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = excluded.value")).
		WithArgs(session.KeyIdentity, "a@b.com").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_state WHERE key = $1")).
		WithArgs(session.KeyIdentity).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("a@b.com"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_state WHERE key = $1")).
		WithArgs(session.KeyIdentity).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_state WHERE key = $1")).
		WithArgs(session.KeyIssuedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_state WHERE key = $1")).
		WithArgs(session.KeyIdentity).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	s, err := NewSQL(ctx, db, DriverPostgres)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, session.KeyIdentity, "a@b.com"))

	v, ok, err := s.Get(ctx, session.KeyIdentity)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", v)

	require.NoError(t, s.Clear(ctx, session.KeyIdentity, session.KeyIssuedAt))

	_, ok, err = s.Get(ctx, session.KeyIdentity)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_MigrationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(assert.AnError)

	_, err = NewSQL(context.Background(), db, DriverPostgres)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedis(client)
	defer r.Close()

	exerciseStore(t, r)

	require.NoError(t, r.Set(context.Background(), session.KeyIdentity, "a@b.com"))
	got, err := mr.Get(RedisPrefix + session.KeyIdentity)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  config.Storage
		want interface{}
	}{
		{"memory", config.Storage{Driver: "memory"}, &Memory{}},
		{"file", config.Storage{Driver: "file", Path: filepath.Join(dir, "session.json")}, &File{}},
		{"sqlite", config.Storage{Driver: "sqlite", Path: filepath.Join(dir, "session.json")}, &SQL{}},
		{"redis", config.Storage{Driver: "redis", RedisAddr: mr.Addr()}, &Redis{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, closer, err := Open(ctx, tt.cfg)
			require.NoError(t, err)
			defer closer.Close()

			assert.IsType(t, tt.want, s)
			exerciseStore(t, s)
		})
	}

	_, err := os.Stat(filepath.Join(dir, "session.db"))
	assert.NoError(t, err)

	_, _, err = Open(ctx, config.Storage{Driver: "etcd"})
	assert.Error(t, err)
}

func TestSealed(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	exerciseStore(t, NewSealed(inner, "correct horse"))

	s := NewSealed(inner, "correct horse")
	require.NoError(t, s.Set(ctx, session.KeyCookies, `[{"name":"token","value":"cookie-123"}]`))

	raw, ok, err := inner.Get(ctx, session.KeyCookies)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "cookie-123")

	// A fresh instance derives the same key from the stored salt
	got, ok, err := NewSealed(inner, "correct horse").Get(ctx, session.KeyCookies)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, got, "cookie-123")

	_, _, err = NewSealed(inner, "wrong").Get(ctx, session.KeyCookies)
	assert.Error(t, err)

	// Values cannot be moved to another key
	require.NoError(t, inner.Set(ctx, session.KeyIdentity, raw))
	_, _, err = s.Get(ctx, session.KeyIdentity)
	assert.Error(t, err)
}

func TestSealed_PlainValueWithoutSalt(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	require.NoError(t, inner.Set(ctx, session.KeyIdentity, "a@b.com"))

	_, _, err := NewSealed(inner, "secret").Get(ctx, session.KeyIdentity)
	assert.Error(t, err)
}

func TestOpen_WithSecret(t *testing.T) {
	s, closer, err := Open(context.Background(), config.Storage{Driver: "memory", Secret: "s3cret"})
	require.NoError(t, err)
	defer closer.Close()

	assert.IsType(t, &Sealed{}, s)
	exerciseStore(t, s)
}
