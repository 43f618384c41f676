package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/status"
)

// TransactionHandler handles payment transactions, one per order.
type TransactionHandler struct {
	db    *gorm.DB
	guard *status.Guard
}

// NewTransactionHandler constructs a TransactionHandler.
func NewTransactionHandler(db *gorm.DB, guard *status.Guard) *TransactionHandler {
	return &TransactionHandler{db: db, guard: guard}
}

// List returns transactions the caller may see: all for administrators,
// otherwise those behind the caller's orders or offers.
func (h *TransactionHandler) List(c *gin.Context) {
	identity := getIdentity(c)

	query := h.db.WithContext(c.Request.Context()).
		Model(&models.Transaction{}).
		Preload("Order").
		Preload("Order.Offer")
	if !identity.IsAdmin() {
		query = query.
			Joins("JOIN orders ON orders.id = transactions.order_id").
			Joins("JOIN offers ON offers.id = orders.offer_id").
			Where("orders.consumer_id = ? OR offers.merchant_id = ?", identity.UserID, identity.UserID)
	}
	if txStatus := strings.TrimSpace(c.Query("status")); txStatus != "" {
		query = query.Where("transactions.status = ?", txStatus)
	}

	var items []models.Transaction
	if errList := query.Order("transactions.created_at DESC").Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": items})
}

// createTransactionRequest defines the request body for payment creation.
type createTransactionRequest struct {
	OrderID       uint64   `json:"order_id"`
	Amount        *float64 `json:"amount"`
	PaymentMethod string   `json:"payment_method"`
}

// Create records the payment for an order. One transaction per order; the
// amount defaults to the order total.
func (h *TransactionHandler) Create(c *gin.Context) {
	var body createTransactionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.OrderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing order_id"})
		return
	}
	paymentMethod := strings.TrimSpace(body.PaymentMethod)
	if !containsString(models.TransactionPaymentMethods(), paymentMethod) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_method must be one of: " + strings.Join(models.TransactionPaymentMethods(), ", ")})
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

	var exists models.Transaction
	if errCheck := h.db.WithContext(c.Request.Context()).Where("order_id = ?", order.ID).First(&exists).Error; errCheck == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "order already has a transaction"})
		return
	} else if !errors.Is(errCheck, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	amount := 0.0
	if body.Amount != nil {
		if *body.Amount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount cannot be negative"})
			return
		}
		amount = *body.Amount
	} else if order.TotalPrice != nil {
		amount = *order.TotalPrice
	}

	transaction := models.Transaction{
		OrderID:       order.ID,
		Amount:        amount,
		Status:        models.TransactionPending,
		PaymentMethod: paymentMethod,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&transaction).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create transaction failed"})
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// Get returns one transaction. Selling merchant, ordering consumer, or admin.
func (h *TransactionHandler) Get(c *gin.Context) {
	transaction, ok := h.loadTransaction(c)
	if !ok {
		return
	}
	if !h.transactionVisibleTo(c, transaction) {
		return
	}
	c.JSON(http.StatusOK, transaction)
}

// ByOrder returns the transaction attached to an order.
func (h *TransactionHandler) ByOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var transaction models.Transaction
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Order").
		Preload("Order.Offer").
		Where("order_id = ?", orderID).
		First(&transaction).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if !h.transactionVisibleTo(c, transaction) {
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// UpdateStatus moves a transaction along its payment lifecycle. The selling
// merchant owns this transition.
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	transaction, ok := h.loadTransaction(c)
	if !ok {
		return
	}

	var body updateStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if errApply := h.guard.Apply(c.Request.Context(), getIdentity(c), &transaction, strings.TrimSpace(body.Status)); errApply != nil {
		writeDomainError(c, errApply)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": transaction.ID, "status": body.Status})
}

// transactionVisibleTo enforces read access on a loaded transaction.
func (h *TransactionHandler) transactionVisibleTo(c *gin.Context, transaction models.Transaction) bool {
	identity := getIdentity(c)
	if identity.IsAdmin() || transaction.OwnedBy(identity.UserID) {
		return true
	}
	if transaction.Order != nil && transaction.Order.ConsumerID == identity.UserID {
		return true
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	return false
}

// loadTransaction fetches the transaction addressed by the :id path
// parameter with the order and offer needed for ownership checks.
func (h *TransactionHandler) loadTransaction(c *gin.Context) (models.Transaction, bool) {
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return models.Transaction{}, false
	}

	var transaction models.Transaction
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Order").
		Preload("Order.Offer").
		First(&transaction, transactionID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return models.Transaction{}, false
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return models.Transaction{}, false
	}
	return transaction, true
}
