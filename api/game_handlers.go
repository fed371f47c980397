package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type dieRequest struct {
	Bet int64 `json:"bet"`
}

type gridRequest struct {
	Position *int `json:"position"`
}

type claimRequest struct {
	ClaimID string `json:"claim_id"`
	ItemID  string `json:"item_id"`
}

func (h *handlers) playReel(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	play, err := h.services.Games.PlayReel(c.Request.Context(), session.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, play)
}

func (h *handlers) playDie(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req dieRequest
	if !bindJSON(c, &req) {
		return
	}

	play, err := h.services.Games.PlayDie(c.Request.Context(), session.AccountID, req.Bet)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, play)
}

func (h *handlers) playGrid(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req gridRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Position == nil {
		badRequest(c, "position is required")
		return
	}

	play, err := h.services.Games.PlayGrid(c.Request.Context(), session.AccountID, *req.Position)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, play)
}

func (h *handlers) claimGrid(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req claimRequest
	if !bindJSON(c, &req) {
		return
	}
	claimID, ok := parseID(c, "claim_id", req.ClaimID)
	if !ok {
		return
	}

	entry, err := h.services.Games.ClaimGridItem(c.Request.Context(), session.AccountID, claimID, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item_id": entry.ItemID, "remaining_uses": entry.RemainingUses})
}
