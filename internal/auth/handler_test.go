package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/vagaflow/vagaflow/internal/auth"
	"github.com/vagaflow/vagaflow/internal/shared"
	"github.com/vagaflow/vagaflow/internal/users"
	_ "github.com/vagaflow/vagaflow/testing"
)

type stubRepo struct {
	user *users.User
}

func (s *stubRepo) Get(ctx context.Context, id int64) (*users.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) List(ctx context.Context) ([]users.User, error) {
	if s.user == nil {
		return nil, nil
	}
	return []users.User{*s.user}, nil
}

func activeUser(t *testing.T, password string) *users.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &users.User{
		ID:           1,
		Email:        "user@test.local",
		PasswordHash: string(hashed),
		GlobalRole:   "recruiter",
		IsActive:     true,
	}
}

func newAuthHandler(t *testing.T, repo users.Repository) (*auth.Handler, *shared.SessionManager, *auth.TokenIssuer) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	tokens := auth.NewTokenIssuer("tokensecret", time.Hour)
	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager, tokens)
	return handler, sessionManager, tokens
}

func newTestRouter(handler *auth.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r
}

func doLogin(t *testing.T, handler *auth.Handler, sessionManager *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)
	res := httptest.NewRecorder()

	router := newTestRouter(handler)
	router.ServeHTTP(res, req)
	if err := sessionManager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	handler, sessionManager, tokens := newAuthHandler(t, &stubRepo{user: activeUser(t, "correctpass")})

	res, sess := doLogin(t, handler, sessionManager, `{"email":"user@test.local","password":"correctpass"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		UserID     int64  `json:"user_id"`
		GlobalRole string `json:"global_role"`
		Token      string `json:"token"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.UserID != 1 || payload.GlobalRole != "recruiter" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if sess.User() != "1" {
		t.Fatalf("session user not set, got %q", sess.User())
	}

	userID, err := tokens.Verify(payload.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if userID != 1 {
		t.Fatalf("token subject = %d, want 1", userID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	handler, sessionManager, _ := newAuthHandler(t, &stubRepo{user: activeUser(t, "correctpass")})

	res, sess := doLogin(t, handler, sessionManager, `{"email":"user@test.local","password":"wrongpass"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
	if sess.User() != "" {
		t.Fatalf("session user must stay empty on failed login")
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t, "correctpass")
	user.IsActive = false
	handler, sessionManager, _ := newAuthHandler(t, &stubRepo{user: user})

	res, _ := doLogin(t, handler, sessionManager, `{"email":"user@test.local","password":"correctpass"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
}

func TestRequireUserBearerToken(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correctpass")}
	_, _, tokens := newAuthHandler(t, repo)
	mw := auth.Middleware{Service: auth.NewService(repo), Tokens: tokens}

	var got shared.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	token, err := tokens.Issue(1, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	mw.RequireUser(next).ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if got.UserID != 1 || got.GlobalRole != "recruiter" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestRequireUserRejectsExpiredToken(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correctpass")}
	mw := auth.Middleware{Service: auth.NewService(repo), Tokens: auth.NewTokenIssuer("tokensecret", time.Hour)}

	stale := auth.NewTokenIssuer("tokensecret", time.Hour)
	token, err := stale.Issue(1, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	mw.RequireUser(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
}
