package auth

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodtunes/moodtunes/internal/domain/account"
	"github.com/moodtunes/moodtunes/internal/infra/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	st, err := store.New(afero.NewMemMapFs(), "data")
	require.NoError(t, err)
	return NewManager(st), st
}

func TestManager_Register(t *testing.T) {
	m, _ := newTestManager(t)

	session, err := m.Register("dj@example.com", "dj", "pass", "avataaars", "dj")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "dj", session.Username)
	assert.Equal(t, "dj@example.com", session.Email)
	assert.Equal(t, account.TierFree, session.Subscription)
	assert.NotZero(t, session.JoinedAt)
	assert.Contains(t, session.AvatarURL, "avataaars")

	// Registration logs the account in.
	current, ok := m.Current()
	assert.True(t, ok)
	assert.Equal(t, session.ID, current.ID)
}

func TestManager_Register_DuplicateEmail(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Register("dj@example.com", "dj", "pass", "avataaars", "dj")
	require.NoError(t, err)

	_, err = m.Register("dj@example.com", "other", "pass2", "avataaars", "other")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestManager_Register_BlankUsernameFallsBackToEmailLocalPart(t *testing.T) {
	m, _ := newTestManager(t)

	session, err := m.Register("melody@example.com", "  ", "pass", "avataaars", "m")
	require.NoError(t, err)
	assert.Equal(t, "melody", session.Username)
}

func TestManager_Login(t *testing.T) {
	m, _ := newTestManager(t)
	registered, err := m.Register("dj@example.com", "dj", "pass", "avataaars", "dj")
	require.NoError(t, err)
	m.Logout()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{
			name:     "correct credentials",
			email:    "dj@example.com",
			password: "pass",
		},
		{
			name:     "wrong password",
			email:    "dj@example.com",
			password: "nope",
			wantErr:  true,
		},
		{
			name:     "unknown email",
			email:    "ghost@example.com",
			password: "pass",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := m.Login(tt.email, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, session.ID)
		})
	}
}

func TestManager_Restore(t *testing.T) {
	m, st := newTestManager(t)

	// Nothing stored yet.
	_, ok := m.Restore()
	assert.False(t, ok)

	_, err := m.Register("dj@example.com", "dj", "pass", "avataaars", "dj")
	require.NoError(t, err)

	// A fresh manager over the same store restores the session.
	restoredMgr := NewManager(st)
	session, ok := restoredMgr.Restore()
	assert.True(t, ok)
	assert.Equal(t, "dj@example.com", session.Email)

	current, ok := restoredMgr.Current()
	assert.True(t, ok)
	assert.Equal(t, session.ID, current.ID)
}

func TestManager_Restore_NormalizesOldRecords(t *testing.T) {
	m, st := newTestManager(t)

	// A record written before tiers existed has no subscription field.
	require.NoError(t, st.Write(store.Session, map[string]any{
		"id":       "old-id",
		"username": "old",
		"email":    "old@example.com",
	}))

	session, ok := m.Restore()
	require.True(t, ok)
	assert.Equal(t, account.TierFree, session.Subscription)
	assert.NotZero(t, session.JoinedAt)
}

func TestManager_Upgrade(t *testing.T) {
	m, st := newTestManager(t)

	_, err := m.Upgrade()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	registered, err := m.Register("dj@example.com", "dj", "pass", "avataaars", "dj")
	require.NoError(t, err)

	session, err := m.Upgrade()
	require.NoError(t, err)
	assert.Equal(t, account.TierPro, session.Subscription)

	// The tier is mirrored onto the account record so it survives re-login.
	var accounts []account.Account
	require.True(t, st.Read(store.Accounts, &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, registered.ID, accounts[0].ID)
	assert.Equal(t, account.TierPro, accounts[0].Subscription)
}

func TestManager_Logout(t *testing.T) {
	m, st := newTestManager(t)

	_, err := m.Register("dj@example.com", "dj", "pass", "avataaars", "dj")
	require.NoError(t, err)

	m.Logout()
	_, ok := m.Current()
	assert.False(t, ok)

	// The stored session is gone, but the account survives.
	var session account.Session
	assert.False(t, st.Read(store.Session, &session))
	var accounts []account.Account
	assert.True(t, st.Read(store.Accounts, &accounts))
	assert.Len(t, accounts, 1)
}
