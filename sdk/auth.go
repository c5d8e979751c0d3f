package desk

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/vango-go/voicedesk/pkg/auth"
	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/state"
)

// AuthService manages the operator's session.
type AuthService struct {
	client *Client
}

// Login exchanges credentials for a token pair, persists it, and loads the
// current user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, core.NewInvalidRequestError("email and password are required")
	}
	r := newRequest(http.MethodPost, "/auth/login").withForm(url.Values{
		"username": {email},
		"password": {password},
	})
	r.anonymous = true

	var pair types.TokenPair
	if err := s.client.do(ctx, r, &pair); err != nil {
		return nil, err
	}
	tokens := auth.Tokens{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
	s.client.storeTokens(tokens)
	s.client.session.Dispatch(state.LoggedIn{Tokens: tokens})
	s.client.logger.Info("logged in", "email", email)
	return s.Me(ctx)
}

// Register creates an account and logs into it.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*types.User, error) {
	body := types.RegisterRequest{Email: strings.TrimSpace(email), Password: password}
	if name := strings.TrimSpace(fullName); name != "" {
		body.FullName = &name
	}
	r, err := newRequest(http.MethodPost, "/auth/register").withJSON(body)
	if err != nil {
		return nil, err
	}
	r.anonymous = true
	if err := s.client.do(ctx, r, nil); err != nil {
		return nil, err
	}
	return s.Login(ctx, email, password)
}

// Refresh forces a token refresh. A rejected refresh logs the session out
// and returns core.ErrSessionExpired.
func (s *AuthService) Refresh(ctx context.Context) error {
	ctx, cancel := s.client.withRequestTimeout(ctx)
	defer cancel()
	_, err := s.client.refreshFrom(ctx, s.client.session.State().Tokens.AccessToken)
	return err
}

// Me fetches the current user and records it in the auth store.
func (s *AuthService) Me(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/auth/me"), &user); err != nil {
		return nil, err
	}
	s.client.session.Dispatch(state.UserLoaded{User: user})
	return &user, nil
}

func (s *AuthService) UpdateMe(ctx context.Context, patch types.UserPatch) (*types.User, error) {
	r, err := newRequest(http.MethodPut, "/auth/me").withJSON(patch)
	if err != nil {
		return nil, err
	}
	var user types.User
	if err := s.client.do(ctx, r, &user); err != nil {
		return nil, err
	}
	s.client.session.Dispatch(state.UserLoaded{User: user})
	return &user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	if current == "" || next == "" {
		return core.NewInvalidRequestError("current and new password are required")
	}
	r, err := newRequest(http.MethodPost, "/auth/change-password").withJSON(types.PasswordChange{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		return err
	}
	return s.client.do(ctx, r, nil)
}

// Logout clears persisted tokens.
func (s *AuthService) Logout() error {
	err := s.client.tokens.Clear()
	s.client.session.Dispatch(state.LoggedOut{})
	return err
}

// Restore validates persisted tokens by fetching the current user. A 401
// is answered with a single refresh; when that fails the session is logged
// out and core.ErrSessionExpired is returned.
func (s *AuthService) Restore(ctx context.Context) (*types.User, error) {
	if s.client.session.State().Tokens.Empty() {
		return nil, core.ErrNotAuthenticated
	}
	return s.Me(ctx)
}
