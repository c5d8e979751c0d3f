package state

import (
	"github.com/vango-go/voicedesk/pkg/auth"
	"github.com/vango-go/voicedesk/pkg/core/types"
)

// AuthStatus is the single source of truth for whether requests can be
// authenticated.
type AuthStatus string

const (
	AuthUnknown       AuthStatus = "unknown"
	AuthAuthenticated AuthStatus = "authenticated"
	AuthAnonymous     AuthStatus = "anonymous"
	AuthExpired       AuthStatus = "expired"
)

type AuthState struct {
	Status AuthStatus
	Tokens auth.Tokens
	User   *types.User
}

// AuthAction is implemented by the auth actions below.
type AuthAction interface{ authAction() }

// TokensLoaded reports tokens read from persistent storage at startup.
type TokensLoaded struct{ Tokens auth.Tokens }

type LoggedIn struct{ Tokens auth.Tokens }

type TokensRefreshed struct{ Tokens auth.Tokens }

type UserLoaded struct{ User types.User }

// LoggedOut clears credentials. Expired distinguishes a forced logout after
// a failed refresh from an explicit one.
type LoggedOut struct{ Expired bool }

func (TokensLoaded) authAction()    {}
func (LoggedIn) authAction()        {}
func (TokensRefreshed) authAction() {}
func (UserLoaded) authAction()      {}
func (LoggedOut) authAction()       {}

// NewAuthStore returns an auth store in the unknown state.
func NewAuthStore() *Store[AuthState, AuthAction] {
	return New(AuthState{Status: AuthUnknown}, ReduceAuth)
}

func ReduceAuth(s AuthState, action AuthAction) AuthState {
	switch a := action.(type) {
	case TokensLoaded:
		if a.Tokens.Empty() {
			return AuthState{Status: AuthAnonymous}
		}
		return AuthState{Status: AuthAuthenticated, Tokens: a.Tokens}
	case LoggedIn:
		return AuthState{Status: AuthAuthenticated, Tokens: a.Tokens}
	case TokensRefreshed:
		s.Tokens = a.Tokens
		s.Status = AuthAuthenticated
		return s
	case UserLoaded:
		user := a.User
		s.User = &user
		return s
	case LoggedOut:
		if a.Expired {
			return AuthState{Status: AuthExpired}
		}
		return AuthState{Status: AuthAnonymous}
	default:
		return s
	}
}
