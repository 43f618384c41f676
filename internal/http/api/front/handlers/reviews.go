package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
)

// ReviewHandler handles reviews of completed orders, one per order.
type ReviewHandler struct {
	db *gorm.DB
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

// List returns reviews, optionally filtered by the selling merchant.
func (h *ReviewHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Model(&models.Review{}).
		Preload("Order")

	if merchantID := strings.TrimSpace(c.Query("merchant_id")); merchantID != "" {
		query = query.
			Joins("JOIN orders ON orders.id = reviews.order_id").
			Joins("JOIN offers ON offers.id = orders.offer_id").
			Where("offers.merchant_id = ?", merchantID)
	}

	var items []models.Review
	if errList := query.Order("reviews.created_at DESC").Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": items})
}

// createReviewRequest defines the request body for review creation.
type createReviewRequest struct {
	OrderID uint64 `json:"order_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Create records a review for a completed order by its consumer.
func (h *ReviewHandler) Create(c *gin.Context) {
	var body createReviewRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.OrderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing order_id"})
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	var order models.Order
	errOrder := h.db.WithContext(c.Request.Context()).First(&order, body.OrderID).Error
	if errors.Is(errOrder, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if errOrder != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errAccess := getChecker(c).IsOwnerOrAdmin(order); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}
	if order.Status != models.OrderCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only completed orders can be reviewed"})
		return
	}

	var exists models.Review
	if errCheck := h.db.WithContext(c.Request.Context()).Where("order_id = ?", order.ID).First(&exists).Error; errCheck == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "order already reviewed"})
		return
	} else if !errors.Is(errCheck, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	review := models.Review{
		OrderID: order.ID,
		Rating:  body.Rating,
		Comment: body.Comment,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&review).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create review failed"})
		return
	}

	c.JSON(http.StatusCreated, review)
}

// Get returns one review. Public read.
func (h *ReviewHandler) Get(c *gin.Context) {
	review, ok := h.loadReview(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, review)
}

// ByOrder returns the review attached to an order.
func (h *ReviewHandler) ByOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var review models.Review
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Order").
		Where("order_id = ?", orderID).
		First(&review).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, review)
}

// updateReviewRequest defines the request body for review updates.
type updateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// Update changes a review. Reviewing consumer or admin only.
func (h *ReviewHandler) Update(c *gin.Context) {
	review, ok := h.loadReview(c)
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsOwnerOrAdmin(review); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	var body updateReviewRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Rating != nil {
		if *body.Rating < 1 || *body.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
			return
		}
		updates["rating"] = *body.Rating
	}
	if body.Comment != nil {
		updates["comment"] = *body.Comment
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Delete removes a review. Reviewing consumer or admin only.
func (h *ReviewHandler) Delete(c *gin.Context) {
	review, ok := h.loadReview(c)
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsOwnerOrAdmin(review); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Review{}, review.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// loadReview fetches the review addressed by the :id path parameter with the
// order needed for ownership checks.
func (h *ReviewHandler) loadReview(c *gin.Context) (models.Review, bool) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return models.Review{}, false
	}

	var review models.Review
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Order").
		First(&review, reviewID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return models.Review{}, false
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return models.Review{}, false
	}
	return review, true
}
