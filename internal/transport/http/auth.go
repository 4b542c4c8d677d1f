package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/blog/backend/internal/service/session"
	"github.com/iamasit07/blog/backend/internal/transport/http/middleware"
	"github.com/iamasit07/blog/backend/pkg/httputil"
	"github.com/iamasit07/blog/backend/pkg/useragent"
)

type AuthHandler struct {
	Auth    *session.AuthService
	Cookies httputil.CookiePolicy
}

func NewAuthHandler(svc *session.AuthService, cookies httputil.CookiePolicy) *AuthHandler {
	return &AuthHandler{Auth: svc, Cookies: cookies}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if err := h.Auth.Register(c.Request.Context(), req.Email, req.Username, req.Password); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registration complete"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	log.Printf("[AUTH] %s signed in from %s (%s)", res.User.Email, c.ClientIP(), useragent.Describe(c.Request.UserAgent()))
	h.Cookies.SetRefreshCookie(c.Writer, res.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"user":        res.User,
		"accessToken": res.AccessToken,
	})
}

// Logout is a no-op without a cookie. Otherwise the owning session is
// revoked. The cookie is cleared even when no session matched or the store
// failed.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := httputil.GetRefreshToken(c.Request)
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}

	h.Cookies.ClearRefreshCookie(c.Writer)
	if err := h.Auth.Logout(c.Request.Context(), token); err != nil {
		log.Printf("[AUTH] Logout failed: %v", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Token reissues an access token from the refresh cookie.
func (h *AuthHandler) Token(c *gin.Context) {
	token, err := httputil.GetRefreshToken(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Refresh token required"})
		return
	}

	res, err := h.Auth.Reissue(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        res.User,
		"accessToken": res.AccessToken,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
		return
	}

	profile, cached, err := h.Auth.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	if cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, profile)
}
