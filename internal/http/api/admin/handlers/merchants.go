package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
)

// MerchantAdminHandler manages merchant verification and limits.
type MerchantAdminHandler struct {
	db *gorm.DB
}

// NewMerchantAdminHandler constructs a MerchantAdminHandler.
func NewMerchantAdminHandler(db *gorm.DB) *MerchantAdminHandler {
	return &MerchantAdminHandler{db: db}
}

// verifyRequest defines the request body for verification toggles.
type verifyRequest struct {
	IsVerified bool `json:"is_verified"`
}

// Verify sets a merchant's verification flag.
func (h *MerchantAdminHandler) Verify(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	var body verifyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Merchant{}).
		Where("user_id = ?", userID).
		Update("is_verified", body.IsVerified)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "merchant not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "is_verified": body.IsVerified})
}

// priceLimitRequest defines the request body for price limit changes.
type priceLimitRequest struct {
	MaxPriceLimit float64 `json:"max_price_limit"`
}

// PriceLimit sets the highest price a merchant may put on an offer.
func (h *MerchantAdminHandler) PriceLimit(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	var body priceLimitRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.MaxPriceLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_price_limit must be positive"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Merchant{}).
		Where("user_id = ?", userID).
		Update("max_price_limit", body.MaxPriceLimit)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "merchant not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "max_price_limit": body.MaxPriceLimit})
}
