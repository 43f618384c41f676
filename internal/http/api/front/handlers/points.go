package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodbridge-dev/foodbridge/internal/points"
)

// PointsHandler exposes the point ledger over HTTP.
type PointsHandler struct {
	ledger *points.Store
}

// NewPointsHandler constructs a PointsHandler.
func NewPointsHandler(ledger *points.Store) *PointsHandler {
	return &PointsHandler{ledger: ledger}
}

// GetBalance returns a user's point balance. Callers may only read their own
// balance unless they are administrators.
func (h *PointsHandler) GetBalance(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsSelfOrAdmin(userID); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	balance, errGet := h.ledger.GetBalance(c.Request.Context(), userID)
	if errGet != nil {
		writeDomainError(c, errGet)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "balance": balance})
}

// addPointsRequest defines the request body for point credits.
type addPointsRequest struct {
	Amount int64 `json:"amount"`
}

// AddPoints credits a user's account. Self or admin only.
func (h *PointsHandler) AddPoints(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsSelfOrAdmin(userID); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	var body addPointsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	balance, errAdd := h.ledger.AddPoints(c.Request.Context(), userID, body.Amount)
	if errAdd != nil {
		writeDomainError(c, errAdd)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "balance": balance})
}

// transferRequest defines the request body for point transfers.
type transferRequest struct {
	FromUserID uint64 `json:"from_user_id"`
	ToUserID   uint64 `json:"to_user_id"`
	Amount     int64  `json:"amount"`
}

// Transfer moves points between two accounts. The sending account must be
// the caller's own unless the caller is an administrator.
func (h *PointsHandler) Transfer(c *gin.Context) {
	var body transferRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.FromUserID == 0 || body.ToUserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing from_user_id or to_user_id"})
		return
	}
	if errAccess := getChecker(c).IsSelfOrAdmin(body.FromUserID); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	result, errTransfer := h.ledger.Transfer(c.Request.Context(), body.FromUserID, body.ToUserID, body.Amount)
	if errTransfer != nil {
		writeDomainError(c, errTransfer)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Leaderboard returns the top balances, highest first. A zero or negative
// limit falls back to the configured default size.
func (h *PointsHandler) Leaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, errParse := strconv.Atoi(raw)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, errList := h.ledger.Leaderboard(c.Request.Context(), limit)
	if errList != nil {
		writeDomainError(c, errList)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
