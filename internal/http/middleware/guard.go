package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kaushikshivam970/storeit/internal/session"
)

// SignInPath is where unauthenticated page requests are sent.
const SignInPath = "/sign-in"

// protectedPrefixes lists the page paths that require an authenticated
// session, matched by prefix including sub-paths.
var protectedPrefixes = []string{
	"/dashboard",
	"/documents",
	"/images",
	"/media",
	"/others",
}

// Guard gates protected pages on the presence of the session cookie, with no
// backend calls. It deliberately does not validate the token: the cheap
// presence check stops the common anonymous case at the edge, and protected
// page logic makes the authoritative decision through AuthService.CurrentUser.
func Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !requiresAuth(path) {
			c.Next()
			return
		}

		if session.Token(c.Request) == "" {
			target := SignInPath + "?redirect=" + url.QueryEscape(path)
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		c.Next()
	}
}

func requiresAuth(path string) bool {
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
