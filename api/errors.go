package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"pointsgame/service"
)

var kindStatus = map[service.ErrorKind]int{
	service.KindUnauthenticated:    http.StatusUnauthorized,
	service.KindInvalidCredentials: http.StatusUnauthorized,
	service.KindAccountDisabled:    http.StatusUnauthorized,
	service.KindPermissionDenied:   http.StatusForbidden,
	service.KindAccountNotFound:    http.StatusNotFound,
	service.KindItemNotFound:       http.StatusNotFound,
	service.KindInsufficientFunds:  http.StatusConflict,
	service.KindItemNotOwned:       http.StatusConflict,
	service.KindNoUsesRemaining:    http.StatusConflict,
	service.KindAccountExists:      http.StatusConflict,
	service.KindInvalidInput:       http.StatusBadRequest,
	service.KindRateLimited:        http.StatusTooManyRequests,
	service.KindPartialSabotage:    http.StatusBadGateway,
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind service.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error", "kind"} and aborts the chain.
// Internal errors are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status := StatusFor(kind)
	body := gin.H{"error": err.Error(), "kind": kind}

	var limited *service.RateLimitedError
	if errors.As(err, &limited) {
		body["reset_at"] = limited.ResetAt.UTC()
	}

	var partial *service.PartialSabotageError
	if errors.As(err, &partial) {
		body["error"] = "points were spent but the sabotage could not be applied"
		body["attacker_new_balance"] = partial.AttackerNewBalance
	}

	if kind == service.KindInternal {
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("Request failed")
		body["error"] = "internal server error"
	}

	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message, "kind": service.KindInvalidInput})
}
