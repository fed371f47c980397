package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	account, token, err := h.services.Auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookie(c, token, h.sessionTTL)
	c.JSON(http.StatusCreated, gin.H{"user": account})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	account, token, ttl, err := h.services.Auth.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookie(c, token, ttl)
	c.JSON(http.StatusOK, gin.H{"user": account})
}

func (h *handlers) logout(c *gin.Context) {
	h.setAuthCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) me(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	account, inventory, err := h.services.Auth.Me(c.Request.Context(), session.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account, "inventory": inventory})
}

// setAuthCookie writes the session cookie; a negative ttl deletes it
func (h *handlers) setAuthCookie(c *gin.Context, token string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookie, token, maxAge, "/", "", h.secureCookie, true)
}
