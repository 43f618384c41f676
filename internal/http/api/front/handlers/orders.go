package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/status"
)

// OrderHandler handles consumer order CRUD.
type OrderHandler struct {
	db    *gorm.DB
	guard *status.Guard
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(db *gorm.DB, guard *status.Guard) *OrderHandler {
	return &OrderHandler{db: db, guard: guard}
}

// List returns the caller's orders; administrators see all. Supported query
// parameters: status, offer_id.
func (h *OrderHandler) List(c *gin.Context) {
	identity := getIdentity(c)

	query := h.db.WithContext(c.Request.Context()).Model(&models.Order{})
	if !identity.IsAdmin() {
		query = query.Where("consumer_id = ?", identity.UserID)
	}
	if orderStatus := strings.TrimSpace(c.Query("status")); orderStatus != "" {
		query = query.Where("status = ?", orderStatus)
	}
	if offerID := strings.TrimSpace(c.Query("offer_id")); offerID != "" {
		query = query.Where("offer_id = ?", offerID)
	}

	var items []models.Order
	if errList := query.Order("created_at DESC").Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": items})
}

// ByConsumer returns orders placed by the given consumer. Self or admin only.
func (h *OrderHandler) ByConsumer(c *gin.Context) {
	consumerID, ok := parseIDParam(c, "consumer_id")
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsSelfOrAdmin(consumerID); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	var items []models.Order
	if errList := h.db.WithContext(c.Request.Context()).
		Where("consumer_id = ?", consumerID).
		Order("created_at DESC").
		Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": items})
}

// createOrderRequest defines the request body for order creation.
type createOrderRequest struct {
	OfferID       uint64   `json:"offer_id"`
	Quantity      uint     `json:"quantity"`
	TotalPrice    *float64 `json:"total_price"`
	PickupDate    string   `json:"pickup_date"`
	PaymentMethod string   `json:"payment_method"`
}

// Create places an order on an offer for the caller's consumer profile. The
// total price defaults to the offer price times the quantity.
func (h *OrderHandler) Create(c *gin.Context) {
	identity := getIdentity(c)

	var consumer models.Consumer
	errFind := h.db.WithContext(c.Request.Context()).First(&consumer, "user_id = ?", identity.UserID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusForbidden, gin.H{"error": "consumer profile required"})
		return
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var body createOrderRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.OfferID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing offer_id"})
		return
	}
	if body.Quantity == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}
	paymentMethod := strings.TrimSpace(body.PaymentMethod)
	if paymentMethod != "" && !containsString(models.OrderPaymentMethods(), paymentMethod) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_method must be one of: " + strings.Join(models.OrderPaymentMethods(), ", ")})
		return
	}

	var offer models.Offer
	errOffer := h.db.WithContext(c.Request.Context()).First(&offer, body.OfferID).Error
	if errors.Is(errOffer, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return
	}
	if errOffer != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if offer.Status != models.OfferAvailable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offer is not available"})
		return
	}
	if body.Quantity > offer.AvailableQuantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity exceeds available stock"})
		return
	}

	totalPrice := body.TotalPrice
	if totalPrice == nil {
		computed := offer.Price * float64(body.Quantity)
		totalPrice = &computed
	} else if *totalPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "total_price cannot be negative"})
		return
	}

	order := models.Order{
		ConsumerID:    consumer.UserID,
		OfferID:       offer.ID,
		Quantity:      body.Quantity,
		TotalPrice:    totalPrice,
		Status:        models.OrderPending,
		PaymentMethod: paymentMethod,
	}
	if pickupDate, ok := parseDate(c, body.PickupDate, "pickup_date"); !ok {
		return
	} else if pickupDate != nil {
		order.PickupDate = pickupDate
	}

	// Creating the order and decrementing stock commit together.
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Offer{}).
			Where("id = ? AND available_quantity >= ?", offer.ID, body.Quantity).
			Update("available_quantity", gorm.Expr("available_quantity - ?", body.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInsufficientStock
		}
		return tx.Create(&order).Error
	})
	if errors.Is(errTx, errInsufficientStock) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity exceeds available stock"})
		return
	}
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create order failed"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// errInsufficientStock aborts the order transaction when stock ran out
// between the read and the write.
var errInsufficientStock = errors.New("insufficient stock")

// Get returns one order. Ordering consumer, selling merchant, or admin only.
func (h *OrderHandler) Get(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	if !h.orderVisibleTo(c, order) {
		return
	}
	c.JSON(http.StatusOK, order)
}

// updateOrderRequest defines the request body for order updates.
type updateOrderRequest struct {
	Quantity      *uint    `json:"quantity"`
	TotalPrice    *float64 `json:"total_price"`
	PickupDate    *string  `json:"pickup_date"`
	PaymentMethod *string  `json:"payment_method"`
}

// Update changes a pending order. Ordering consumer or admin only.
func (h *OrderHandler) Update(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsOwnerOrAdmin(order); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}
	if order.Status != models.OrderPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only pending orders can be updated"})
		return
	}

	var body updateOrderRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Quantity != nil {
		if *body.Quantity == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
			return
		}
		updates["quantity"] = *body.Quantity
	}
	if body.TotalPrice != nil {
		if *body.TotalPrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "total_price cannot be negative"})
			return
		}
		updates["total_price"] = *body.TotalPrice
	}
	if body.PickupDate != nil {
		pickupDate, okDate := parseDate(c, *body.PickupDate, "pickup_date")
		if !okDate {
			return
		}
		updates["pickup_date"] = pickupDate
	}
	if body.PaymentMethod != nil {
		trimmed := strings.TrimSpace(*body.PaymentMethod)
		if trimmed != "" && !containsString(models.OrderPaymentMethods(), trimmed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment_method must be one of: " + strings.Join(models.OrderPaymentMethods(), ", ")})
			return
		}
		updates["payment_method"] = trimmed
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Delete cancels and removes a pending order, returning its stock.
func (h *OrderHandler) Delete(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsOwnerOrAdmin(order); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}
	if order.Status != models.OrderPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only pending orders can be deleted"})
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errRestock := tx.Model(&models.Offer{}).
			Where("id = ?", order.OfferID).
			Update("available_quantity", gorm.Expr("available_quantity + ?", order.Quantity)).Error; errRestock != nil {
			return errRestock
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UpdateStatus moves an order along its lifecycle. Confirmation to ready for
// pickup notifies the consumer.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}

	var body updateStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	newStatus := strings.TrimSpace(body.Status)

	if errApply := h.guard.Apply(c.Request.Context(), getIdentity(c), &order, newStatus); errApply != nil {
		writeDomainError(c, errApply)
		return
	}

	if newStatus == models.OrderConfirmed {
		h.notifyOrderReady(c, order)
	}

	c.JSON(http.StatusOK, gin.H{"id": order.ID, "status": newStatus})
}

// notifyOrderReady tells the consumer the order was confirmed for pickup.
// Failures are logged only.
func (h *OrderHandler) notifyOrderReady(c *gin.Context, order models.Order) {
	notification := models.Notification{
		UserID:   order.ConsumerID,
		Type:     models.NotificationOrderReady,
		Message:  "Your order is confirmed and ready for pickup",
		Status:   models.NotificationSent,
		Metadata: []byte(`{"order_id":` + formatID(order.ID) + `}`),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&notification).Error; errCreate != nil {
		log.WithError(errCreate).WithField("order_id", order.ID).Warn("order ready notification failed")
	}
}

// orderVisibleTo enforces read access: consumer, selling merchant, or admin.
func (h *OrderHandler) orderVisibleTo(c *gin.Context, order models.Order) bool {
	identity := getIdentity(c)
	if identity.IsAdmin() || order.ConsumerID == identity.UserID {
		return true
	}

	var offer models.Offer
	if errFind := h.db.WithContext(c.Request.Context()).First(&offer, order.OfferID).Error; errFind == nil {
		if offer.MerchantID == identity.UserID {
			return true
		}
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	return false
}

// loadOrder fetches the order addressed by the :id path parameter.
func (h *OrderHandler) loadOrder(c *gin.Context) (models.Order, bool) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return models.Order{}, false
	}

	var order models.Order
	errFind := h.db.WithContext(c.Request.Context()).First(&order, orderID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return models.Order{}, false
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return models.Order{}, false
	}
	return order, true
}
