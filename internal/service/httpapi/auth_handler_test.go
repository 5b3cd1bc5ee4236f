package httpapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func newAuthTestServer(t *testing.T) (*httptest.Server, *auth.TokenIssuer) {
	t.Helper()

	issuer := auth.NewTokenIssuer("test-secret")
	handler := NewAuthHandler(memory.NewUserRepository(), issuer, nil)
	srv := httptest.NewServer(NewAuthRouter(handler, issuer))
	t.Cleanup(srv.Close)
	return srv, issuer
}

func TestAuthRegisterAndLogin(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", `{"email":"Alice@Example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, resp.status)
	assert.Contains(t, resp.body, `"email":"alice@example.com"`)
	assert.Contains(t, resp.body, `"role":"user"`)

	// Повторная регистрация того же email.
	resp = postJSON(t, srv.URL+"/auth/register", `{"email":"alice@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.Contains(t, resp.body, "Email already registered")

	// Вход по JSON.
	resp = postJSON(t, srv.URL+"/auth/login", `{"email":"alice@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `"token_type":"bearer"`)

	// Неверный пароль.
	resp = postJSON(t, srv.URL+"/auth/login", `{"email":"alice@example.com","password":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Contains(t, resp.body, "Incorrect email or password")
}

func TestAuthLoginWithForm(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", `{"email":"bob@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, resp.status)

	form := url.Values{"username": {"bob@example.com"}, "password": {"secret1"}}
	httpResp, err := http.Post(srv.URL+"/auth/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer httpResp.Body.Close()

	assert.Equal(t, http.StatusOK, httpResp.StatusCode)

	// Токен уходит и в cookie.
	var hasCookie bool
	for _, cookie := range httpResp.Cookies() {
		if cookie.Name == "access_token" && cookie.Value != "" {
			hasCookie = true
		}
	}
	assert.True(t, hasCookie)
}

func TestAuthMeRequiresToken(t *testing.T) {
	srv, issuer := newAuthTestServer(t)

	resp := getWithToken(t, srv.URL+"/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	token, err := issuer.AccessToken("carol@example.com", "user")
	require.NoError(t, err)

	resp = getWithToken(t, srv.URL+"/auth/me", token)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "carol@example.com")
}

func TestAuthChangePassword(t *testing.T) {
	srv, issuer := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", `{"email":"dave@example.com","password":"oldpass"}`, "")
	require.Equal(t, http.StatusCreated, resp.status)

	token, err := issuer.AccessToken("dave@example.com", "user")
	require.NoError(t, err)

	// Неверный старый пароль.
	resp = postJSON(t, srv.URL+"/auth/change_password", `{"old_password":"nope","new_password":"newpass"}`, token)
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.Contains(t, resp.body, "Incorrect old password")

	resp = postJSON(t, srv.URL+"/auth/change_password", `{"old_password":"oldpass","new_password":"newpass"}`, token)
	require.Equal(t, http.StatusOK, resp.status)

	// Старый пароль больше не работает.
	resp = postJSON(t, srv.URL+"/auth/login", `{"email":"dave@example.com","password":"oldpass"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	resp = postJSON(t, srv.URL+"/auth/login", `{"email":"dave@example.com","password":"newpass"}`, "")
	assert.Equal(t, http.StatusOK, resp.status)
}
