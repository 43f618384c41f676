package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/status"
)

// OfferHandler handles merchant offer CRUD.
type OfferHandler struct {
	db    *gorm.DB
	guard *status.Guard
}

// NewOfferHandler constructs an OfferHandler.
func NewOfferHandler(db *gorm.DB, guard *status.Guard) *OfferHandler {
	return &OfferHandler{db: db, guard: guard}
}

// List returns offers with optional filters. Supported query parameters:
// status, merchant_id, category_id.
func (h *OfferHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Offer{})

	if offerStatus := strings.TrimSpace(c.Query("status")); offerStatus != "" {
		query = query.Where("status = ?", offerStatus)
	}
	if merchantID := strings.TrimSpace(c.Query("merchant_id")); merchantID != "" {
		query = query.Where("merchant_id = ?", merchantID)
	}
	if categoryID := strings.TrimSpace(c.Query("category_id")); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var items []models.Offer
	if errList := query.Order("created_at DESC").Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": items})
}

// Active returns offers still open for ordering, with stock, inside their
// pickup window. Public.
func (h *OfferHandler) Active(c *gin.Context) {
	now := time.Now().UTC()

	var items []models.Offer
	if errList := h.db.WithContext(c.Request.Context()).
		Where("status = ? AND available_quantity > 0", models.OfferAvailable).
		Where("end_date IS NULL OR end_date >= ?", now).
		Order("created_at DESC").
		Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": items})
}

// ByMerchant returns offers published by the given merchant.
func (h *OfferHandler) ByMerchant(c *gin.Context) {
	merchantID, ok := parseIDParam(c, "merchant_id")
	if !ok {
		return
	}

	var items []models.Offer
	if errList := h.db.WithContext(c.Request.Context()).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": items})
}

// createOfferRequest defines the request body for offer creation.
type createOfferRequest struct {
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Photo             string  `json:"photo"`
	Price             float64 `json:"price"`
	AvailableQuantity uint    `json:"available_quantity"`
	CategoryID        *uint64 `json:"category_id"`
	StartDate         string  `json:"start_date"`
	EndDate           string  `json:"end_date"`
}

// Create publishes an offer for the caller's merchant profile. The price must
// stay within the merchant's admin-set limit.
func (h *OfferHandler) Create(c *gin.Context) {
	identity := getIdentity(c)

	var merchant models.Merchant
	errFind := h.db.WithContext(c.Request.Context()).First(&merchant, "user_id = ?", identity.UserID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusForbidden, gin.H{"error": "merchant profile required"})
		return
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var body createOfferRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}
	if body.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price cannot be negative"})
		return
	}
	if body.Price > merchant.MaxPriceLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price exceeds your allowed limit"})
		return
	}
	if body.AvailableQuantity == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "available_quantity must be positive"})
		return
	}

	offer := models.Offer{
		MerchantID:        merchant.UserID,
		CategoryID:        body.CategoryID,
		Title:             strings.TrimSpace(body.Title),
		Description:       body.Description,
		Photo:             body.Photo,
		Price:             body.Price,
		AvailableQuantity: body.AvailableQuantity,
		Status:            models.OfferAvailable,
	}
	if startDate, ok := parseDate(c, body.StartDate, "start_date"); !ok {
		return
	} else if startDate != nil {
		offer.StartDate = startDate
	}
	if endDate, ok := parseDate(c, body.EndDate, "end_date"); !ok {
		return
	} else if endDate != nil {
		offer.EndDate = endDate
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&offer).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create offer failed"})
		return
	}

	h.notifyNewOffer(c, offer)
	c.JSON(http.StatusCreated, offer)
}

// notifyNewOffer tells consumers who ordered from this merchant before about
// the new offer. Failures are logged only.
func (h *OfferHandler) notifyNewOffer(c *gin.Context, offer models.Offer) {
	var consumerIDs []uint64
	if errList := h.db.WithContext(c.Request.Context()).
		Model(&models.Order{}).
		Distinct("orders.consumer_id").
		Joins("JOIN offers ON offers.id = orders.offer_id").
		Where("offers.merchant_id = ?", offer.MerchantID).
		Pluck("orders.consumer_id", &consumerIDs).Error; errList != nil {
		log.WithError(errList).WithField("offer_id", offer.ID).Warn("new offer notification query failed")
		return
	}

	for _, consumerID := range consumerIDs {
		notification := models.Notification{
			UserID:   consumerID,
			Type:     models.NotificationNewOffer,
			Message:  "A merchant you ordered from published a new offer: " + offer.Title,
			Status:   models.NotificationSent,
			Metadata: []byte(`{"offer_id":` + formatID(offer.ID) + `}`),
		}
		if errCreate := h.db.WithContext(c.Request.Context()).Create(&notification).Error; errCreate != nil {
			log.WithError(errCreate).WithField("offer_id", offer.ID).Warn("new offer notification failed")
		}
	}
}

// Get returns one offer. Public read.
func (h *OfferHandler) Get(c *gin.Context) {
	offer, ok := h.loadOffer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, offer)
}

// updateOfferRequest defines the request body for offer updates.
type updateOfferRequest struct {
	Title             *string  `json:"title"`
	Description       *string  `json:"description"`
	Photo             *string  `json:"photo"`
	Price             *float64 `json:"price"`
	AvailableQuantity *uint    `json:"available_quantity"`
	CategoryID        *uint64  `json:"category_id"`
}

// Update changes an offer. Publishing merchant or admin only.
func (h *OfferHandler) Update(c *gin.Context) {
	offer, ok := h.loadOffer(c)
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsOwnerOrAdmin(offer); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	var body updateOfferRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Title != nil {
		trimmed := strings.TrimSpace(*body.Title)
		if trimmed == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		updates["title"] = trimmed
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Photo != nil {
		updates["photo"] = *body.Photo
	}
	if body.Price != nil {
		if *body.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price cannot be negative"})
			return
		}
		var merchant models.Merchant
		if errFind := h.db.WithContext(c.Request.Context()).First(&merchant, "user_id = ?", offer.MerchantID).Error; errFind == nil {
			if *body.Price > merchant.MaxPriceLimit {
				c.JSON(http.StatusBadRequest, gin.H{"error": "price exceeds your allowed limit"})
				return
			}
		}
		updates["price"] = *body.Price
	}
	if body.AvailableQuantity != nil {
		updates["available_quantity"] = *body.AvailableQuantity
	}
	if body.CategoryID != nil {
		updates["category_id"] = *body.CategoryID
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.Offer{}).
		Where("id = ?", offer.ID).
		Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Delete removes an offer. Publishing merchant or admin only.
func (h *OfferHandler) Delete(c *gin.Context) {
	offer, ok := h.loadOffer(c)
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsOwnerOrAdmin(offer); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Offer{}, offer.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UpdateStatus moves an offer along its lifecycle.
func (h *OfferHandler) UpdateStatus(c *gin.Context) {
	offer, ok := h.loadOffer(c)
	if !ok {
		return
	}

	var body updateStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if errApply := h.guard.Apply(c.Request.Context(), getIdentity(c), &offer, strings.TrimSpace(body.Status)); errApply != nil {
		writeDomainError(c, errApply)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": offer.ID, "status": body.Status})
}

// loadOffer fetches the offer addressed by the :id path parameter.
func (h *OfferHandler) loadOffer(c *gin.Context) (models.Offer, bool) {
	offerID, ok := parseIDParam(c, "id")
	if !ok {
		return models.Offer{}, false
	}

	var offer models.Offer
	errFind := h.db.WithContext(c.Request.Context()).First(&offer, offerID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return models.Offer{}, false
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return models.Offer{}, false
	}
	return offer, true
}
