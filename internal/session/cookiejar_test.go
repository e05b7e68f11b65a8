package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/scic/internal/logger"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func cookieNames(cookies []*http.Cookie) []string {
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	return names
}

func TestCookieJar_PersistsAcrossInstances(t *testing.T) {
	store := newMapStore()
	u := mustParse(t, "https://api.scic.vn/api/v1/user/login")

	NewCookieJar(store, logger.Nop()).SetCookies(u, []*http.Cookie{
		{Name: "token", Value: "abc", Path: "/", HttpOnly: true},
	})

	got := NewCookieJar(store, logger.Nop()).Cookies(mustParse(t, "https://api.scic.vn/api/v1/posts"))
	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0].Value)
}

func TestCookieJar_ScopesByHostAndScheme(t *testing.T) {
	jar := NewCookieJar(newMapStore(), logger.Nop())
	jar.SetCookies(mustParse(t, "https://api.scic.vn/"), []*http.Cookie{
		{Name: "token", Value: "abc", Secure: true},
		{Name: "lang", Value: "vi"},
	})

	assert.Empty(t, jar.Cookies(mustParse(t, "https://other.example/")))
	assert.Equal(t, []string{"lang"}, cookieNames(jar.Cookies(mustParse(t, "http://api.scic.vn/"))))
	assert.ElementsMatch(t, []string{"token", "lang"}, cookieNames(jar.Cookies(mustParse(t, "https://api.scic.vn/"))))
}

func TestCookieJar_ScopesByPath(t *testing.T) {
	jar := NewCookieJar(newMapStore(), logger.Nop())
	jar.SetCookies(mustParse(t, "https://api.scic.vn/api/v1/user/login"), []*http.Cookie{
		{Name: "token", Value: "abc", Path: "/api/v1"},
		{Name: "flash", Value: "welcome"},
	})

	assert.Equal(t, []string{"token"}, cookieNames(jar.Cookies(mustParse(t, "https://api.scic.vn/api/v1/posts"))))
	assert.ElementsMatch(t, []string{"token", "flash"}, cookieNames(jar.Cookies(mustParse(t, "https://api.scic.vn/api/v1/user/logout"))))
	assert.Empty(t, jar.Cookies(mustParse(t, "https://api.scic.vn/")))
	assert.Empty(t, jar.Cookies(mustParse(t, "https://api.scic.vn/api/v10")))
}

func TestCookieJar_DomainCookies(t *testing.T) {
	jar := NewCookieJar(newMapStore(), logger.Nop())
	jar.SetCookies(mustParse(t, "https://api.scic.vn/"), []*http.Cookie{
		{Name: "shared", Value: "1", Domain: ".scic.vn", Path: "/"},
		{Name: "foreign", Value: "2", Domain: "example.com", Path: "/"},
		{Name: "local", Value: "3", Path: "/"},
	})

	assert.Equal(t, []string{"shared"}, cookieNames(jar.Cookies(mustParse(t, "https://www.scic.vn/"))))
	assert.ElementsMatch(t, []string{"shared", "local"}, cookieNames(jar.Cookies(mustParse(t, "https://api.scic.vn/"))))
	assert.Empty(t, jar.Cookies(mustParse(t, "https://example.com/")))
}

func TestCookieJar_DeletionAndExpiry(t *testing.T) {
	store := newMapStore()
	jar := NewCookieJar(store, logger.Nop())
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	jar.now = func() time.Time { return now }
	u := mustParse(t, "https://api.scic.vn/")

	jar.SetCookies(u, []*http.Cookie{
		{Name: "token", Value: "abc"},
		{Name: "short", Value: "x", MaxAge: 60},
	})
	require.Len(t, jar.Cookies(u), 2)

	// Server-side logout answers with a deleting cookie
	jar.SetCookies(u, []*http.Cookie{{Name: "token", MaxAge: -1}})
	assert.Equal(t, []string{"short"}, cookieNames(jar.Cookies(u)))

	now = now.Add(time.Minute)
	assert.Empty(t, jar.Cookies(u))

	jar.SetCookies(u, []*http.Cookie{{Name: "short", MaxAge: -1}})
	assert.False(t, store.has(KeyCookies))
}

func TestCookieJar_WithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/"})
			return
		}
		if c, err := r.Cookie("token"); err == nil && c.Value == "abc" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := newMapStore()
	client := &http.Client{Jar: NewCookieJar(store, logger.Nop())}

	resp, err := client.Post(srv.URL+"/login", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	// A fresh client over the same store still carries the credential
	client = &http.Client{Jar: NewCookieJar(store, logger.Nop())}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/private", nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
