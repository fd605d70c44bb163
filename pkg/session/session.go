package session

import (
	"context"
	"sync"
	"time"

	"github.com/vango-dev/salesdash/pkg/metrics"
)

// Session is the credential state of one browser. It is shared by the HTTP
// handlers and live connections of that browser and is safe for concurrent
// use.
type Session struct {
	id    string
	store Store
	now   func() time.Time

	mu   sync.RWMutex
	cred *Credential
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Credential returns the current credential, if any and not expired.
func (s *Session) Credential() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cred == nil || s.cred.Expired(s.now()) {
		return Credential{}, false
	}
	return *s.cred, true
}

// Token returns the bearer token, or "" when signed out or expired.
// It implements fetch.TokenSource.
func (s *Session) Token() string {
	cred, ok := s.Credential()
	if !ok {
		return ""
	}
	return cred.Token
}

// User returns the signed-in user, or the zero User when signed out.
func (s *Session) User() User {
	cred, _ := s.Credential()
	return cred.User
}

// Authenticated reports whether the session holds a usable credential.
func (s *Session) Authenticated() bool {
	_, ok := s.Credential()
	return ok
}

// SignIn stores token and user as the session credential.
func (s *Session) SignIn(ctx context.Context, token string, user User) (Credential, error) {
	cred := NewCredential(token, user, s.now())
	if err := s.store.Save(ctx, s.id, cred); err != nil {
		return Credential{}, err
	}

	s.mu.Lock()
	s.cred = &cred
	s.mu.Unlock()

	metrics.RecordCredential("sign_in")
	return cred, nil
}

// SignOut clears the credential. Requests already in flight keep the token
// they were issued with.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()

	metrics.RecordCredential("sign_out")
	return s.store.Delete(ctx, s.id)
}

// refresh reloads the credential from the store so changes made by other
// nodes become visible.
func (s *Session) refresh(ctx context.Context) error {
	cred, err := s.store.Load(ctx, s.id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred != nil && cred == nil {
		metrics.RecordCredential("expired")
	}
	s.cred = cred
	return nil
}
