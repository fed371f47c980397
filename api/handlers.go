package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pointsgame/models"
	"pointsgame/service"
)

type handlers struct {
	services     Services
	health       HealthChecker
	live         *LiveHub
	secureCookie bool
	sessionTTL   time.Duration
}

func (h *handlers) healthz(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Healthy(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindJSON decodes the request body, writing an InvalidInput response on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

// queryInt reads an optional integer query parameter
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return n, true
}

// parseID parses a required uuid field
func parseID(c *gin.Context, name, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, name+" must be a valid id")
		return uuid.Nil, false
	}
	return id, true
}

// requireSession returns the caller's session, writing Unauthenticated when there is none
func requireSession(c *gin.Context) (models.Session, bool) {
	session, ok := currentSession(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
	}
	return session, ok
}
