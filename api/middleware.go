package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"pointsgame/models"
	"pointsgame/service"
)

const (
	// AuthCookie carries the session token
	AuthCookie = "auth-token"

	sessionKey = "session"
)

// TokenParser resolves a session token
type TokenParser interface {
	ParseToken(token string) (*models.Session, error)
}

// AuthRequired resolves the session from the auth cookie or a bearer header
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(AuthCookie)
		if token == "" {
			if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}

		session, err := parser.ParseToken(token)
		if err != nil {
			respondError(c, service.ErrUnauthenticated)
			return
		}

		c.Set(sessionKey, *session)
		c.Next()
	}
}

// AdminRequired rejects sessions without the admin flag. It must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := currentSession(c)
		if !ok {
			respondError(c, service.ErrUnauthenticated)
			return
		}
		if err := service.RequireAdmin(session); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}

// RequestLogger logs every request through logrus
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if session, ok := currentSession(c); ok {
			fields["account_id"] = session.AccountID
		}

		entry := log.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("Request completed")
		case status >= http.StatusBadRequest:
			entry.Info("Request completed")
		default:
			entry.Debug("Request completed")
		}
	}
}

const (
	authClientIdleTTL     = 30 * time.Minute
	authClientSweepPeriod = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// authLimiter keeps one token bucket per client. Idle clients are swept at most once per authClientSweepPeriod.
type authLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	every     time.Duration
	burst     int
	lastSweep time.Time
}

func newAuthLimiter(every time.Duration, burst int) *authLimiter {
	return &authLimiter{
		clients: make(map[string]*clientLimiter),
		every:   every,
		burst:   burst,
	}
}

func (l *authLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, exists := l.clients[ip]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = now
	allowed := client.limiter.AllowN(now, 1)

	if now.Sub(l.lastSweep) >= authClientSweepPeriod {
		for key, other := range l.clients {
			if now.Sub(other.lastSeen) > authClientIdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}
	return allowed
}

// AuthRateLimit throttles login and registration per client IP when enabled
func AuthRateLimit(enabled bool, every time.Duration, burst int) gin.HandlerFunc {
	limiter := newAuthLimiter(every, burst)

	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		allowed := limiter.allow(c.ClientIP(), time.Now())
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "authentication rate limit exceeded",
				"kind":  service.KindRateLimited,
			})
			return
		}
		c.Next()
	}
}
