package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kaushikshivam970/storeit/internal/config"
	"github.com/kaushikshivam970/storeit/internal/domain"
	"github.com/kaushikshivam970/storeit/internal/http/handler"
	"github.com/kaushikshivam970/storeit/internal/service"
	"github.com/kaushikshivam970/storeit/internal/session"
)

func newTestRouter(t *testing.T, users *memoryUserRepo, issuer *mockIssuer, handle *mockHandle) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := service.NewAuthService(users, issuer, mockHandleFactory{handle: handle}, nil, nil, node, config.Config{}, zap.NewNop())
	h := handler.NewAuthHandler(svc)

	r := gin.New()
	auth := r.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/sign-in", h.SignIn)
	auth.POST("/verify", h.Verify)
	auth.POST("/sign-out", h.SignOut)
	auth.GET("/me", h.Me)
	return r
}

func sessionCookie(t *testing.T, res *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestVerifySealsSessionCookie(t *testing.T) {
	issuer := &mockIssuer{validCode: "123456", session: domain.Session{ID: "s1", Secret: "opaque-secret"}}
	r := newTestRouter(t, &memoryUserRepo{}, issuer, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/verify", strings.NewReader(`{"accountId":"acc-1","secret":"123456"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(t, w.Result())
	require.NotNil(t, cookie)
	require.Equal(t, "opaque-secret", cookie.Value)
	require.Equal(t, "/", cookie.Path)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestVerifyWrongCodeLeavesCookieUnset(t *testing.T) {
	issuer := &mockIssuer{validCode: "123456"}
	r := newTestRouter(t, &memoryUserRepo{}, issuer, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/verify", strings.NewReader(`{"accountId":"acc-1","secret":"000000"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, sessionCookie(t, w.Result()))
}

func TestSignInUnknownEmailIsStructuredResult(t *testing.T) {
	issuer := &mockIssuer{}
	r := newTestRouter(t, &memoryUserRepo{}, issuer, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", strings.NewReader(`{"email":"nobody@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "user_not_found")
	require.Zero(t, issuer.tokenCalls)
}

func TestRegisterReturnsAccountID(t *testing.T) {
	issuer := &mockIssuer{accountID: "acc-9"}
	users := &memoryUserRepo{}
	r := newTestRouter(t, users, issuer, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"fullName":"Ada Lovelace","email":"ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "acc-9")
	require.Len(t, users.users, 1)
}

func TestSignOutClearsCookieAndRedirectsEvenWhenRevokeFails(t *testing.T) {
	handle := &mockHandle{deleteErr: errors.New("provider unreachable")}
	r := newTestRouter(t, &memoryUserRepo{}, &mockIssuer{}, handle)

	// Twice in a row: the externally observable outcome must be identical.
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "some-token"})
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/sign-in", w.Header().Get("Location"))

		cookie := sessionCookie(t, w.Result())
		require.NotNil(t, cookie)
		require.Empty(t, cookie.Value)
		require.Negative(t, cookie.MaxAge)
	}
}

func TestMeWithoutCookieIsUnauthorized(t *testing.T) {
	handle := &mockHandle{account: domain.Account{ID: "acc-1"}}
	r := newTestRouter(t, &memoryUserRepo{}, &mockIssuer{}, handle)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, handle.getCalls)
}

func TestMeResolvesIdentityRecord(t *testing.T) {
	users := &memoryUserRepo{users: []domain.User{{ID: "u1", AccountID: "acc-1", Email: "ada@example.com", FullName: "Ada Lovelace"}}}
	handle := &mockHandle{account: domain.Account{ID: "acc-1", Email: "ada@example.com"}}
	r := newTestRouter(t, users, &mockIssuer{}, handle)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "valid-token"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ada@example.com")
}

type memoryUserRepo struct {
	users []domain.User
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (m *memoryUserRepo) GetByAccountID(ctx context.Context, accountID string) (domain.User, error) {
	for _, u := range m.users {
		if u.AccountID == accountID {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (m *memoryUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = "doc-1"
	m.users = append(m.users, user)
	return user, nil
}

type mockIssuer struct {
	accountID  string
	tokenCalls int
	validCode  string
	session    domain.Session
}

func (m *mockIssuer) CreateEmailToken(ctx context.Context, userID, email string) (string, error) {
	m.tokenCalls++
	if m.accountID != "" {
		return m.accountID, nil
	}
	return userID, nil
}

func (m *mockIssuer) CreateSession(ctx context.Context, accountID, code string) (domain.Session, error) {
	if code != m.validCode {
		return domain.Session{}, domain.ErrVerificationFailed
	}
	return m.session, nil
}

type mockHandle struct {
	account   domain.Account
	getCalls  int
	deleteErr error
}

func (m *mockHandle) Get(ctx context.Context) (domain.Account, error) {
	m.getCalls++
	return m.account, nil
}

func (m *mockHandle) DeleteCurrentSession(ctx context.Context) error {
	return m.deleteErr
}

type mockHandleFactory struct {
	handle *mockHandle
}

func (m mockHandleFactory) Session(token string) service.SessionHandle {
	if token == "" || m.handle == nil {
		return nil
	}
	return m.handle
}
