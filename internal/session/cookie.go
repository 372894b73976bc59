// Package session seals the provider session secret into the client cookie
// and reads it back. The cookie is the only durable artifact this service
// leaves on the client; its validity is owned by the provider and checked
// lazily on use.
package session

import "net/http"

// CookieName is the fixed key carrying the session secret.
const CookieName = "appwrite-session"

// SetCookie seals the session secret into the response. The cookie is
// HttpOnly, Secure and SameSite=Strict, with no client-side expiry.
func SetCookie(w http.ResponseWriter, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    secret,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// Token reads the session secret from the request, or "" when absent.
func Token(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
