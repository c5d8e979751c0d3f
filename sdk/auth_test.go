package desk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/vango-go/voicedesk/pkg/auth"
	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/state"
)

func authHandler(t *testing.T, log *callLog) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("login Content-Type = %q", ct)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not carry a bearer token")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("username") != "ops@example.com" || r.PostForm.Get("password") != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","token_type":"bearer"}`))
	})
	mux.HandleFunc("/api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ops@example.com" || body["full_name"] != "Ops Lead" {
			t.Errorf("register body = %v", body)
		}
		_, _ = w.Write([]byte(`{"id":"u1","email":"ops@example.com","full_name":"Ops Lead","role":"viewer","is_active":true}`))
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		if bearer(r) != "access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"u1","email":"ops@example.com","full_name":"Ops Lead","role":"admin","is_active":true,"created_at":"2026-01-02T03:04:05"}`))
	})
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		w.WriteHeader(http.StatusUnauthorized)
	})
	return mux
}

func TestLogin_FormEncodedAndPersists(t *testing.T) {
	log := &callLog{}
	client, store := newTestClient(t, authHandler(t, log), auth.Tokens{})

	user, err := client.Auth.Login(context.Background(), "ops@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.DisplayName() != "Ops Lead" {
		t.Errorf("DisplayName() = %q", user.DisplayName())
	}
	saved, _ := store.Load()
	if saved.AccessToken != "access-1" || saved.RefreshToken != "refresh-1" {
		t.Errorf("stored tokens = %+v", saved)
	}
	s := client.Session().State()
	if s.Status != state.AuthAuthenticated || s.User == nil || s.User.ID != "u1" {
		t.Errorf("session = %+v", s)
	}
}

func TestLogin_BadCredentialsDoNotRefresh(t *testing.T) {
	log := &callLog{}
	client, _ := newTestClient(t, authHandler(t, log), auth.Tokens{})

	_, err := client.Auth.Login(context.Background(), "ops@example.com", "wrong")
	if !core.IsAuth(err) {
		t.Fatalf("err = %v, want 401", err)
	}
	if n := log.count("POST /api/v1/auth/refresh"); n != 0 {
		t.Errorf("refresh calls = %d, want 0", n)
	}
}

func TestLogin_RequiresCredentials(t *testing.T) {
	client := NewClient()
	if _, err := client.Auth.Login(context.Background(), " ", ""); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestRegister_LogsIn(t *testing.T) {
	log := &callLog{}
	client, _ := newTestClient(t, authHandler(t, log), auth.Tokens{})

	user, err := client.Auth.Register(context.Background(), "ops@example.com", "hunter2", "Ops Lead")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("user = %+v", user)
	}
	want := []string{"POST /api/v1/auth/register", "POST /api/v1/auth/login", "GET /api/v1/auth/me"}
	got := log.all()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}

func TestLogout_ClearsTokens(t *testing.T) {
	client, store := newTestClient(t, http.NotFoundHandler(), auth.Tokens{AccessToken: "a", RefreshToken: "r"})

	if err := client.Auth.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	saved, _ := store.Load()
	if !saved.Empty() {
		t.Errorf("stored tokens = %+v", saved)
	}
	if s := client.Session().State(); s.Status != state.AuthAnonymous {
		t.Errorf("status = %q, want anonymous", s.Status)
	}
}

func TestRestore_WithoutTokens(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler(), auth.Tokens{})
	if _, err := client.Auth.Restore(context.Background()); !errors.Is(err, core.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestRestore_StaleSessionLogsOut(t *testing.T) {
	log := &callLog{}
	client, store := newTestClient(t, authHandler(t, log), auth.Tokens{AccessToken: "stale", RefreshToken: "refresh-0"})

	_, err := client.Auth.Restore(context.Background())
	if !errors.Is(err, core.ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if n := log.count("POST /api/v1/auth/refresh"); n != 1 {
		t.Errorf("refresh calls = %d, want 1", n)
	}
	saved, _ := store.Load()
	if !saved.Empty() {
		t.Errorf("stored tokens = %+v", saved)
	}
}
