package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every operation
type brokenStore struct{}

func (brokenStore) Load() (string, error) { return "", errors.New("keychain locked") }
func (brokenStore) Save(string) error     { return errors.New("keychain locked") }
func (brokenStore) Delete() error         { return errors.New("keychain locked") }

func newTestStore(t *testing.T, persist TokenStore) *Store {
	t.Helper()
	s := NewStore(persist, zerolog.Nop())
	s.Initialize(context.Background())
	return s
}

func assertInvariant(t *testing.T, s *Store) {
	t.Helper()
	st := s.State()
	assert.Equal(t, st.Token != "", st.IsAuthenticated)
}

func TestStore_InitializeWithoutToken(t *testing.T) {
	s := newTestStore(t, NewMemoryStore(""))

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assertInvariant(t, s)
}

func TestStore_InitializeRehydrates(t *testing.T) {
	s := newTestStore(t, NewMemoryStore("persisted"))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "persisted", s.Token())
}

func TestStore_InitializeBrokenBackend(t *testing.T) {
	s := newTestStore(t, brokenStore{})

	assert.False(t, s.IsAuthenticated())
	assertInvariant(t, s)
}

func TestStore_LoginSuccessPersists(t *testing.T) {
	persist := NewMemoryStore("")
	s := newTestStore(t, persist)

	require.NoError(t, s.LoginSuccess("abc"))

	assert.Equal(t, "abc", s.Token())
	assert.True(t, s.IsAuthenticated())
	assertInvariant(t, s)

	stored, err := persist.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", stored)
}

func TestStore_LoginSuccessOverwrites(t *testing.T) {
	s := newTestStore(t, NewMemoryStore(""))

	require.NoError(t, s.LoginSuccess("first"))
	require.NoError(t, s.LoginSuccess("second"))

	assert.Equal(t, "second", s.Token())
	assertInvariant(t, s)
}

func TestStore_LoginSuccessRejectsEmpty(t *testing.T) {
	s := newTestStore(t, NewMemoryStore("kept"))

	err := s.LoginSuccess("")
	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.Equal(t, "kept", s.Token())
}

func TestStore_LoginSuccessPersistFailure(t *testing.T) {
	s := newTestStore(t, brokenStore{})

	err := s.LoginSuccess("abc")
	assert.Error(t, err)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "abc", s.Token())
}

func TestStore_LogoutErasesAndIsIdempotent(t *testing.T) {
	persist := NewMemoryStore("")
	s := newTestStore(t, persist)
	require.NoError(t, s.LoginSuccess("abc"))

	require.NoError(t, s.Logout())
	require.NoError(t, s.Logout())

	assert.False(t, s.IsAuthenticated())
	assertInvariant(t, s)

	_, err := persist.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_OnChange(t *testing.T) {
	s := newTestStore(t, NewMemoryStore(""))

	var seen []bool
	s.OnChange(func(st State) { seen = append(seen, st.IsAuthenticated) })

	require.NoError(t, s.LoginSuccess("abc"))
	require.NoError(t, s.Logout())

	assert.Equal(t, []bool{true, false}, seen)
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	fs := &FileStore{Dir: dir}

	_, err := fs.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fs.Save("abc"))
	got, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	info, err := os.Stat(filepath.Join(dir, TokenKey))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, fs.Save("def"))
	got, _ = fs.Load()
	assert.Equal(t, "def", got)

	require.NoError(t, fs.Delete())
	require.NoError(t, fs.Delete())
	_, err = fs.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_WithFileStoreAcrossRestarts(t *testing.T) {
	dir := t.TempDir()

	first := newTestStore(t, &FileStore{Dir: dir})
	require.NoError(t, first.LoginSuccess("abc"))

	second := newTestStore(t, &FileStore{Dir: dir})
	assert.Equal(t, "abc", second.Token())

	require.NoError(t, second.Logout())
	third := newTestStore(t, &FileStore{Dir: dir})
	assert.False(t, third.IsAuthenticated())
}

func TestNewTokenStore(t *testing.T) {
	fs, err := NewTokenStore("file", t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, fs)

	ms, err := NewTokenStore("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, ms)

	_, err = NewTokenStore("cookie", "")
	assert.Error(t, err)
}

func TestClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    "user-1",
		"email": "admin@example.com",
		"exp":   exp.Unix(),
	}).SignedString([]byte("any-secret"))
	require.NoError(t, err)

	s := newTestStore(t, NewMemoryStore(signed))
	c, ok := s.Claims()
	require.True(t, ok)
	assert.Equal(t, "user-1", c.Subject)
	assert.Equal(t, "admin@example.com", c.Email)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.Expired(exp.Add(time.Minute)))

	_, ok = ParseClaims("opaque-token")
	assert.False(t, ok)
}
