package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pointsgame/models"
	"pointsgame/service"
)

type useItemRequest struct {
	ItemID string `json:"item_id"`
}

type sabotageRequest struct {
	TargetID string `json:"target_id"`
	ItemID   string `json:"item_id"`
}

type timerRequest struct {
	Action    string `json:"action"`
	Seconds   int    `json:"seconds"`
	AccountID string `json:"account_id"`
}

func (h *handlers) inventory(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	views, err := h.services.Catalog.Inventory(c.Request.Context(), session.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": views})
}

func (h *handlers) useItem(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req useItemRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.services.Catalog.UseItem(c.Request.Context(), session.AccountID, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) sabotageOptions(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	items, targets, err := h.services.Catalog.SabotageOptions(c.Request.Context(), session.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "targets": targetViews(targets)})
}

func (h *handlers) sabotage(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req sabotageRequest
	if !bindJSON(c, &req) {
		return
	}
	targetID, ok := parseID(c, "target_id", req.TargetID)
	if !ok {
		return
	}

	result, err := h.services.Catalog.Sabotage(c.Request.Context(), session.AccountID, targetID, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) notifications(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			badRequest(c, "since must be an RFC 3339 timestamp")
			return
		}
		since = &t
	}

	records, err := h.services.Analytics.Notifications(c.Request.Context(), session.AccountID, since)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": records, "server_time": time.Now().UTC()})
}

func (h *handlers) history(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	history, err := h.services.Analytics.AccountHistory(c.Request.Context(), session.AccountID, models.HistoryFilter(c.Query("type")), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *handlers) leaderboard(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	board, err := h.services.Analytics.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *handlers) timer(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req timerRequest
	if !bindJSON(c, &req) {
		return
	}

	var accountID uuid.UUID
	if req.AccountID != "" {
		if accountID, ok = parseID(c, "account_id", req.AccountID); !ok {
			return
		}
	}

	result, err := h.services.Timer.Control(c.Request.Context(), session, service.TimerRequest{
		Action:    service.TimerAction(req.Action),
		Seconds:   req.Seconds,
		AccountID: accountID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type targetView struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Balance  int64     `json:"balance"`
}

// targetViews hides everything but the public fields of sabotage targets
func targetViews(accounts []*models.Account) []targetView {
	views := make([]targetView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, targetView{ID: a.ID, Username: a.Username, Balance: a.Balance})
	}
	return views
}
