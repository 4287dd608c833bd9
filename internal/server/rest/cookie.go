package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
)

// secureCookies is forced on in production.
func (s *Server) secureCookies() bool {
	return s.config.CookieSecure || s.config.IsProduction()
}

// sameSite allows cross-site delivery to the client app. Browsers drop
// SameSite=None cookies that are not Secure, so plain-HTTP setups fall back
// to Lax.
func (s *Server) sameSite() http.SameSite {
	if s.secureCookies() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (s *Server) setTokenCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   max(int(time.Until(expires).Seconds()), 1),
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: s.sameSite(),
	})
}

func (s *Server) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: s.sameSite(),
	})
}
