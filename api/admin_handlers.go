package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pointsgame/models"
)

type adjustPointsRequest struct {
	AccountID string `json:"account_id"`
	Amount    int64  `json:"amount"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
}

type triggerRequest struct {
	TargetID string `json:"target_id"`
	ItemID   string `json:"item_id"`
}

type giftRequest struct {
	AccountID string `json:"account_id"`
	ItemID    string `json:"item_id"`
}

type updateUserRequest struct {
	AccountID string `json:"account_id"`
	Action    string `json:"action"`
	Value     bool   `json:"value"`
}

const (
	userActionToggleActive   = "toggle_active"
	userActionResetInventory = "reset_inventory"
)

func (h *handlers) adminActivity(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	query := models.FeedQuery{Page: page, Limit: limit}
	if raw := c.Query("account_id"); raw != "" {
		id, ok := parseID(c, "account_id", raw)
		if !ok {
			return
		}
		query.AccountID = &id
	}

	feed, err := h.services.Admin.Feed(c.Request.Context(), session, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *handlers) adminAnalytics(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	stats, err := h.services.Admin.SystemStats(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handlers) adminUsers(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	accounts, err := h.services.Admin.ListAccounts(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": accounts})
}

func (h *handlers) adminUpdateUser(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	accountID, ok := parseID(c, "account_id", req.AccountID)
	if !ok {
		return
	}

	switch req.Action {
	case userActionToggleActive:
		if err := h.services.Admin.SetActive(c.Request.Context(), session, accountID, req.Value); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	case userActionResetInventory:
		entries, err := h.services.Admin.ResetInventory(c.Request.Context(), session, accountID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "inventory": entries})
	default:
		badRequest(c, "action must be toggle_active or reset_inventory")
	}
}

func (h *handlers) adminPoints(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req adjustPointsRequest
	if !bindJSON(c, &req) {
		return
	}
	accountID, ok := parseID(c, "account_id", req.AccountID)
	if !ok {
		return
	}

	result, err := h.services.Admin.AdjustBalance(c.Request.Context(), session, accountID, req.Amount, models.AdjustDirection(req.Action), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) adminItems(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	items, targets, err := h.services.Admin.AdminItems(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "targets": targetViews(targets)})
}

func (h *handlers) adminTrigger(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req triggerRequest
	if !bindJSON(c, &req) {
		return
	}
	targetID, ok := parseID(c, "target_id", req.TargetID)
	if !ok {
		return
	}

	result, err := h.services.Admin.ForceTrigger(c.Request.Context(), session, targetID, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) adminGift(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req giftRequest
	if !bindJSON(c, &req) {
		return
	}
	accountID, ok := parseID(c, "account_id", req.AccountID)
	if !ok {
		return
	}

	entry, err := h.services.Admin.GiftItem(c.Request.Context(), session, accountID, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "item_id": entry.ItemID, "remaining_uses": entry.RemainingUses})
}

func (h *handlers) adminLive(c *gin.Context) {
	if h.live == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "live feed disabled"})
		return
	}
	session, ok := requireSession(c)
	if !ok {
		return
	}
	h.live.Serve(c.Writer, c.Request, session.AccountID)
}
