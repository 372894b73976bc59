package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kaushikshivam970/storeit/internal/domain"
	"github.com/kaushikshivam970/storeit/internal/http/middleware"
	"github.com/kaushikshivam970/storeit/internal/service"
	"github.com/kaushikshivam970/storeit/internal/session"
)

// AuthHandler exposes the auth flows over HTTP. It is the single writer of
// the session cookie: sealed on verify, cleared on sign-out.
type AuthHandler struct {
	Auth *service.AuthService
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// Register creates an identity record if needed and emails an OTP.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid payload."})
		return
	}
	if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Full name and email are required."})
		return
	}

	accountID, err := h.Auth.Register(c.Request.Context(), req.FullName, req.Email)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accountId": accountID})
}

// SignIn emails a fresh OTP to a registered address. An unknown email is a
// structured result, not an error response.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Email is required."})
		return
	}

	result, err := h.Auth.SignIn(c.Request.Context(), req.Email)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	if !result.Found {
		c.JSON(http.StatusOK, gin.H{"accountId": nil, "error": "user_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accountId": result.AccountID})
}

// Verify redeems the OTP and seals the session secret into the cookie. On
// failure the cookie is left untouched.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req struct {
		AccountID string `json:"accountId"`
		Secret    string `json:"secret"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid payload."})
		return
	}
	if strings.TrimSpace(req.AccountID) == "" || strings.TrimSpace(req.Secret) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Account ID and secret are required."})
		return
	}

	sess, err := h.Auth.Verify(c.Request.Context(), req.AccountID, req.Secret)
	if err != nil {
		if errors.Is(err, domain.ErrVerificationFailed) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_otp", "error_description": "Verification failed."})
			return
		}
		respondAuthError(c, err)
		return
	}

	session.SetCookie(c.Writer, sess.Secret)
	c.JSON(http.StatusOK, gin.H{"sessionId": sess.ID})
}

// Me returns the caller's identity record, or an anonymous response when the
// session is absent, stale or orphaned.
func (h *AuthHandler) Me(c *gin.Context) {
	user := h.Auth.CurrentUser(c.Request.Context(), session.Token(c.Request))
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "error_description": "No active session."})
		return
	}
	c.JSON(http.StatusOK, user)
}

// SignOut revokes the session best effort, then clears the cookie and
// redirects to the sign-in page unconditionally. The user-visible outcome is
// the same whether or not the provider-side revoke succeeded.
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.Auth.SignOut(c.Request.Context(), session.Token(c.Request))

	session.ClearCookie(c.Writer)
	c.Redirect(http.StatusFound, middleware.SignInPath)
}

func respondAuthError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrOTPThrottled) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "otp_throttled", "error_description": "Too many codes requested for this address."})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Something went wrong."})
}
