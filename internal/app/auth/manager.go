// Package auth provides the session/auth manager.
package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/moodtunes/moodtunes/internal/domain/account"
	"github.com/moodtunes/moodtunes/internal/infra/store"
)

var (
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("no active session")
)

// Manager registers and authenticates users against the persistent store
// and owns the single active session.
type Manager struct {
	mu      sync.RWMutex
	store   *store.Store
	current *account.Session
	now     func() time.Time
}

// NewManager creates a new session/auth manager.
func NewManager(st *store.Store) *Manager {
	return &Manager{
		store: st,
		now:   time.Now,
	}
}

// Register creates a new account with tier "free" and logs it in.
// Fails with ErrDuplicateEmail when the email is already taken.
func (m *Manager) Register(email, username, password, avatarStyle, avatarSeed string) (account.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var accounts []account.Account
	m.store.Read(store.Accounts, &accounts)

	for _, a := range accounts {
		if a.Email == email {
			return account.Session{}, ErrDuplicateEmail
		}
	}

	if strings.TrimSpace(username) == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	newAccount := account.Account{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		Password:     password,
		AvatarURL:    account.AvatarURL(avatarStyle, avatarSeed),
		Subscription: account.TierFree,
		JoinedAt:     m.now().UnixMilli(),
	}

	accounts = append(accounts, newAccount)
	if err := m.store.Write(store.Accounts, accounts); err != nil {
		return account.Session{}, errors.Wrap(err, "failed to persist account")
	}

	session := account.SessionOf(newAccount)
	if err := m.persistSessionLocked(session); err != nil {
		return account.Session{}, err
	}

	zlog.Info().Msgf("account registered: account_id=%s username=%s", newAccount.ID, newAccount.Username)
	return session, nil
}

// Login authenticates by exact email and password match.
// No hashing, no rate limiting: this is a demo boundary.
func (m *Manager) Login(email, password string) (account.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var accounts []account.Account
	m.store.Read(store.Accounts, &accounts)

	for _, a := range accounts {
		if a.Email == email && a.Password == password {
			session := account.SessionOf(a)
			session.Normalize(m.now())
			if err := m.persistSessionLocked(session); err != nil {
				return account.Session{}, err
			}
			zlog.Info().Msgf("login: account_id=%s username=%s", a.ID, a.Username)
			return session, nil
		}
	}

	return account.Session{}, ErrInvalidCredentials
}

// Restore reconstructs the session from stored state at startup, filling
// fields that records written by older versions may lack.
func (m *Manager) Restore() (account.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var session account.Session
	if !m.store.Read(store.Session, &session) || session.ID == "" {
		return account.Session{}, false
	}

	session.Normalize(m.now())
	m.current = &session
	return session, true
}

// Upgrade sets the active session's tier to "pro" and persists it.
// There is no payment integration.
func (m *Manager) Upgrade() (account.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return account.Session{}, ErrNotAuthenticated
	}

	session := *m.current
	session.Subscription = account.TierPro
	if err := m.persistSessionLocked(session); err != nil {
		return account.Session{}, err
	}

	// Mirror the tier onto the stored account record so a later login
	// restores it.
	var accounts []account.Account
	if m.store.Read(store.Accounts, &accounts) {
		for i := range accounts {
			if accounts[i].ID == session.ID {
				accounts[i].Subscription = account.TierPro
				if err := m.store.Write(store.Accounts, accounts); err != nil {
					zlog.Error().Msgf("failed to persist upgraded account: %v", err)
				}
				break
			}
		}
	}

	zlog.Info().Msgf("subscription upgraded: account_id=%s", session.ID)
	return session, nil
}

// Logout clears the stored session and the in-memory state.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(store.Session); err != nil {
		zlog.Error().Msgf("failed to clear stored session: %v", err)
	}
	m.current = nil
}

// Current returns the active session, if any.
func (m *Manager) Current() (account.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return account.Session{}, false
	}
	return *m.current, true
}

// persistSessionLocked writes the session document and updates the
// in-memory copy. Must be called with the lock held.
func (m *Manager) persistSessionLocked(session account.Session) error {
	if err := m.store.Write(store.Session, session); err != nil {
		return errors.Wrap(err, "failed to persist session")
	}
	m.current = &session
	return nil
}
