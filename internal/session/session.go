// Package session holds the credentials and display name of the signed-in
// user. A Session is created at login and handed to whatever needs it.
package session

import (
	"strings"
	"sync"
	"unicode/utf8"
)

type Session struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	userName     string
}

func New(accessToken, refreshToken, userName string) *Session {
	return &Session{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		userName:     strings.TrimSpace(userName),
	}
}

// AccessToken returns the bearer token, or "" after Logout.
func (s *Session) AccessToken() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Session) UserName() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

// SetUserName updates the display name, e.g. after a profile edit.
func (s *Session) SetUserName(name string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.userName = strings.TrimSpace(name)
	s.mu.Unlock()
}

// Logout clears every credential held by s.
func (s *Session) Logout() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.accessToken, s.refreshToken, s.userName = "", "", ""
	s.mu.Unlock()
}

func (s *Session) Active() bool { return s.AccessToken() != "" }

// FirstName is the first word of the user name, used in greetings.
func (s *Session) FirstName() string {
	parts := strings.Fields(s.UserName())
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// Initials returns the avatar letters: first and last initials for a
// multi-word name, otherwise the first two letters. Upper-cased.
func (s *Session) Initials() string {
	name := s.UserName()
	parts := strings.Fields(name)
	switch {
	case len(parts) >= 2:
		return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[len(parts)-1]))
	case len(parts) == 1:
		r := []rune(parts[0])
		return strings.ToUpper(string(r[:min(2, len(r))]))
	default:
		return ""
	}
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}
