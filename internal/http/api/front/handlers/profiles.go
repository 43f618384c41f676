package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
)

// MerchantHandler handles merchant profile reads and updates.
type MerchantHandler struct {
	db *gorm.DB
}

// NewMerchantHandler constructs a MerchantHandler.
func NewMerchantHandler(db *gorm.DB) *MerchantHandler {
	return &MerchantHandler{db: db}
}

// List returns merchant profiles. Supported query parameter: verified.
func (h *MerchantHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Merchant{})
	if verified := strings.TrimSpace(c.Query("verified")); verified != "" {
		query = query.Where("is_verified = ?", verified == "true")
	}

	var items []models.Merchant
	if errList := query.Order("created_at DESC").Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"merchants": items})
}

// Get returns one merchant profile. Public read.
func (h *MerchantHandler) Get(c *gin.Context) {
	userID, ok := parseIDParam(c, "merchant_id")
	if !ok {
		return
	}

	var merchant models.Merchant
	errFind := h.db.WithContext(c.Request.Context()).First(&merchant, "user_id = ?", userID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "merchant not found"})
		return
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, merchant)
}

// updateMerchantRequest defines the request body for merchant profile
// updates. Verification and the price limit are admin-only fields.
type updateMerchantRequest struct {
	BusinessName *string `json:"business_name"`
	BusinessType *string `json:"business_type"`
	Address      *string `json:"address"`
	Description  *string `json:"description"`
	Phone        *string `json:"phone"`
	PickupHours  *string `json:"pickup_hours"`
}

// Update changes a merchant profile. Profile owner or admin only.
func (h *MerchantHandler) Update(c *gin.Context) {
	userID, ok := parseIDParam(c, "merchant_id")
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsSelfOrAdmin(userID); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	var body updateMerchantRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.BusinessName != nil {
		trimmed := strings.TrimSpace(*body.BusinessName)
		if trimmed == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "business_name cannot be empty"})
			return
		}
		updates["business_name"] = trimmed
	}
	if body.BusinessType != nil {
		updates["business_type"] = strings.TrimSpace(*body.BusinessType)
	}
	if body.Address != nil {
		updates["address"] = strings.TrimSpace(*body.Address)
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Phone != nil {
		updates["phone"] = strings.TrimSpace(*body.Phone)
	}
	if body.PickupHours != nil {
		updates["pickup_hours"] = strings.TrimSpace(*body.PickupHours)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Merchant{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "merchant not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// ConsumerHandler handles consumer profile reads and updates.
type ConsumerHandler struct {
	db *gorm.DB
}

// NewConsumerHandler constructs a ConsumerHandler.
func NewConsumerHandler(db *gorm.DB) *ConsumerHandler {
	return &ConsumerHandler{db: db}
}

// Get returns one consumer profile. Profile owner or admin only.
func (h *ConsumerHandler) Get(c *gin.Context) {
	userID, ok := parseIDParam(c, "consumer_id")
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsSelfOrAdmin(userID); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	var consumer models.Consumer
	errFind := h.db.WithContext(c.Request.Context()).First(&consumer, "user_id = ?", userID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "consumer not found"})
		return
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, consumer)
}

// updateConsumerRequest defines the request body for consumer profile updates.
type updateConsumerRequest struct {
	DeliveryAddress *string `json:"delivery_address"`
	FoodPreferences *string `json:"food_preferences"`
}

// Update changes a consumer profile. Profile owner or admin only.
func (h *ConsumerHandler) Update(c *gin.Context) {
	userID, ok := parseIDParam(c, "consumer_id")
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsSelfOrAdmin(userID); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	var body updateConsumerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.DeliveryAddress != nil {
		updates["delivery_address"] = strings.TrimSpace(*body.DeliveryAddress)
	}
	if body.FoodPreferences != nil {
		updates["food_preferences"] = strings.TrimSpace(*body.FoodPreferences)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Consumer{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "consumer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
