package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCookies_SetAndClearMatch(t *testing.T) {
	c := SessionCookies{Secure: true, MaxAge: time.Hour}

	set := httptest.NewRecorder()
	c.Set(set, "abc")
	clear := httptest.NewRecorder()
	c.Clear(clear)

	setCookies := set.Result().Cookies()
	clearCookies := clear.Result().Cookies()
	require.Len(t, setCookies, 1)
	require.Len(t, clearCookies, 1)

	s, cl := setCookies[0], clearCookies[0]
	assert.Equal(t, CookieName, s.Name)
	assert.Equal(t, "abc", s.Value)
	assert.Equal(t, 3600, s.MaxAge)

	assert.Equal(t, s.Name, cl.Name)
	assert.Equal(t, s.Path, cl.Path)
	assert.Equal(t, s.HttpOnly, cl.HttpOnly)
	assert.Equal(t, s.Secure, cl.Secure)
	assert.Equal(t, s.SameSite, cl.SameSite)
	assert.Equal(t, "", cl.Value)
	assert.Less(t, cl.MaxAge, 0)

	assert.True(t, s.HttpOnly)
	assert.True(t, s.Secure)
	assert.Equal(t, http.SameSiteStrictMode, s.SameSite)
}

func TestSessionCookies_NotSecureOutsideProduction(t *testing.T) {
	rr := httptest.NewRecorder()
	SessionCookies{MaxAge: time.Minute}.Set(rr, "abc")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.False(t, cookies[0].Secure)
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/me", nil)
	_, ok := FromRequest(req)
	assert.False(t, ok)

	req.AddCookie(&http.Cookie{Name: CookieName, Value: ""})
	_, ok = FromRequest(req)
	assert.False(t, ok)

	req = httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok"})
	tok, ok := FromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)
}
