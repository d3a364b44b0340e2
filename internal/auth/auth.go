// Package auth owns the authentication session: sign-up, sign-in and
// sign-out against the managed backend, plus the mutable session state the
// rest of the app reads its user id and access token from.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSession       = errors.New("not signed in")
	ErrMissingEmail    = errors.New("email is required")
	ErrMissingPassword = errors.New("password is required")
)

// Session is an authenticated session as returned by the backend's token
// endpoint.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Email        string
	ExpiresAt    time.Time
}

func (s Session) Valid() bool {
	return s.AccessToken != "" && s.UserID != ""
}

// Authenticator is the backend auth contract.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// TokenExpiry reads the exp claim from an access token without verifying
// the signature. The client holds no signing key; it only needs the
// timestamp to know when a session goes stale.
func TokenExpiry(accessToken string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.New("token has no expiry claim")
	}
	return exp.Time, nil
}

// State holds the current session. A session change invalidates every piece
// of per-user state downstream, so the composition root registers a
// callback and rebuilds the repository when it fires.
type State struct {
	mu       sync.Mutex
	session  Session
	onChange func(Session)
}

func NewState() *State {
	return &State{}
}

// OnChange registers the single change callback. It fires after the new
// session is visible through Current.
func (s *State) OnChange(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *State) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.session.Valid()
}

func (s *State) Set(session Session) {
	s.mu.Lock()
	s.session = session
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(session)
	}
}

func (s *State) Clear() {
	s.Set(Session{})
}

// AccessToken returns the current token, or "" when signed out. Shaped as a
// func so the rest client can take it as a provider.
func (s *State) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.AccessToken
}

// ValidateCredentials is the local pre-network check shared by sign-up and
// sign-in forms.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return ErrMissingEmail
	}
	if password == "" {
		return ErrMissingPassword
	}
	return nil
}
