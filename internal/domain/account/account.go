// Package account provides the Account and Session domain entities.
package account

import (
	"fmt"
	"time"
)

// Tier represents the subscription tier.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// IsValid reports whether t is a known tier.
func (t Tier) IsValid() bool {
	return t == TierFree || t == TierPro
}

// Account represents a registered user as stored in the accounts collection.
// The password is kept in plaintext: this is a demo boundary, not a security
// product.
type Account struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	AvatarURL    string `json:"avatar"`
	Subscription Tier   `json:"subscription"`
	JoinedAt     int64  `json:"joinedAt"` // unix milliseconds
}

// Session is the authenticated view of an account, i.e. an Account minus
// its password. At most one session is active per client.
type Session struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	AvatarURL    string `json:"avatar"`
	Subscription Tier   `json:"subscription"`
	JoinedAt     int64  `json:"joinedAt"`
}

// SessionOf derives a Session from an account.
func SessionOf(a Account) Session {
	return Session{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		AvatarURL:    a.AvatarURL,
		Subscription: a.Subscription,
		JoinedAt:     a.JoinedAt,
	}
}

// Normalize fills fields that older stored records may lack, so that a
// record written before tiers existed still restores cleanly.
func (s *Session) Normalize(now time.Time) {
	if !s.Subscription.IsValid() {
		s.Subscription = TierFree
	}
	if s.JoinedAt == 0 {
		s.JoinedAt = now.UnixMilli()
	}
}

// AvatarURL builds the avatar image URL for a style and seed pair.
func AvatarURL(style, seed string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/%s/svg?seed=%s", style, seed)
}
