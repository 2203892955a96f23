package main

import (
	"context"
	"errors"
	"sync"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/authclient"
	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/session"
)

// AuthAPI is the part of the auth service portalctl signs in with.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*authclient.Tokens, error)
	Register(ctx context.Context, email, password, fullName string) (*authclient.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*authclient.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, accessToken string) (*authclient.Me, error)
}

// identityService keeps the signed-in identity in a token file and tells
// listeners about every change.
type identityService struct {
	auth   AuthAPI
	tokens tokenFile
	logger *logger.Logger

	mu        sync.Mutex
	listeners map[int]func(session.ChangeEvent)
	nextID    int
}

func newIdentityService(auth AuthAPI, tokens tokenFile, log *logger.Logger) *identityService {
	return &identityService{
		auth:      auth,
		tokens:    tokens,
		logger:    log,
		listeners: make(map[int]func(session.ChangeEvent)),
	}
}

func (s *identityService) OnSessionChange(fn func(session.ChangeEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *identityService) emit(kind session.EventKind, identity *access.Identity) {
	s.mu.Lock()
	listeners := make([]func(session.ChangeEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(session.ChangeEvent{Kind: kind, Identity: identity})
	}
}

// CurrentSession validates the saved access token, refreshing it once when
// the auth service rejects it. A session that cannot be refreshed is cleared.
func (s *identityService) CurrentSession(ctx context.Context) (*access.Identity, error) {
	saved, err := s.tokens.Load()
	if err != nil || saved == nil {
		return nil, err
	}

	me, err := s.auth.Me(ctx, saved.AccessToken)
	if err == nil {
		return me.User.Identity(), nil
	}
	if !errors.Is(err, authclient.ErrUnauthorized) || saved.RefreshToken == "" {
		return nil, err
	}

	tokens, err := s.auth.Refresh(ctx, saved.RefreshToken)
	if err != nil {
		if errors.Is(err, authclient.ErrUnauthorized) {
			s.logger.Info("Saved session expired, signing out")
			_ = s.tokens.Clear()
			return nil, nil
		}
		return nil, err
	}
	if err := s.store(tokens); err != nil {
		return nil, err
	}
	identity := tokens.User.Identity()
	s.emit(session.EventTokenRefreshed, identity)
	return identity, nil
}

// AccessToken returns the saved access token, or "" when signed out.
func (s *identityService) AccessToken() string {
	saved, err := s.tokens.Load()
	if err != nil || saved == nil {
		return ""
	}
	return saved.AccessToken
}

func (s *identityService) SignIn(ctx context.Context, email, password string) (*access.Identity, error) {
	tokens, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.signedIn(tokens)
}

func (s *identityService) SignUp(ctx context.Context, email, password, fullName string) (*access.Identity, error) {
	tokens, err := s.auth.Register(ctx, email, password, fullName)
	if err != nil {
		return nil, err
	}
	return s.signedIn(tokens)
}

func (s *identityService) signedIn(tokens *authclient.Tokens) (*access.Identity, error) {
	if err := s.store(tokens); err != nil {
		return nil, err
	}
	identity := tokens.User.Identity()
	s.emit(session.EventSignedIn, identity)
	return identity, nil
}

// SignOut revokes the refresh token when one is saved. The local session is
// cleared even if revocation fails.
func (s *identityService) SignOut(ctx context.Context) error {
	saved, err := s.tokens.Load()
	if err != nil {
		return err
	}
	if saved != nil && saved.RefreshToken != "" {
		if err := s.auth.Logout(ctx, saved.RefreshToken); err != nil {
			s.logger.Warn("Failed to revoke refresh token: %v", err)
		}
	}
	if err := s.tokens.Clear(); err != nil {
		return err
	}
	s.emit(session.EventSignedOut, nil)
	return nil
}

func (s *identityService) store(tokens *authclient.Tokens) error {
	saved := &savedTokens{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}
	if tokens.User != nil {
		saved.UserID = tokens.User.ID
		saved.Email = tokens.User.Email
	}
	return s.tokens.Save(saved)
}
