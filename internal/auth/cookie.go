package auth

import (
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

// SessionCookies writes and clears the session cookie. The same attributes are
// used for both, otherwise some browsers keep the old cookie on clear.
type SessionCookies struct {
	Secure bool
	MaxAge time.Duration
}

func (c SessionCookies) base() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Set attaches token to the response.
func (c SessionCookies) Set(w http.ResponseWriter, token string) {
	ck := c.base()
	ck.Value = token
	ck.MaxAge = int(c.MaxAge.Seconds())
	ck.Expires = time.Now().Add(c.MaxAge)
	http.SetCookie(w, ck)
}

// Clear expires the cookie on the client. Clearing an absent cookie is harmless.
func (c SessionCookies) Clear(w http.ResponseWriter) {
	ck := c.base()
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0)
	http.SetCookie(w, ck)
}

// FromRequest returns the session token carried by r, if any.
func FromRequest(r *http.Request) (string, bool) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}
