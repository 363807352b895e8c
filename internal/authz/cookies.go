package authz

import (
	"net/http"
	"time"
)

// Cookie names the client holds for a session.
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// All session cookies are scoped to the API root so they never leak to
// other paths served from the same origin.
const cookiePath = "/api"

func sessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cookiePath,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

// AccessCookie builds the cookie carrying the access token.
func AccessCookie(token string, ttl time.Duration) *http.Cookie {
	return sessionCookie(AccessCookieName, token, ttl)
}

// RefreshCookie builds the cookie carrying the refresh token.
func RefreshCookie(token string, ttl time.Duration) *http.Cookie {
	return sessionCookie(RefreshCookieName, token, ttl)
}

// ExpiredCookie builds a cookie that instructs the client to drop the named
// session cookie immediately.
func ExpiredCookie(name string) *http.Cookie {
	c := sessionCookie(name, "", 0)
	c.MaxAge = -1
	return c
}
