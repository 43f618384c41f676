package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/status"
)

// NotificationHandler handles in-app notifications.
type NotificationHandler struct {
	db    *gorm.DB
	guard *status.Guard
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(db *gorm.DB, guard *status.Guard) *NotificationHandler {
	return &NotificationHandler{db: db, guard: guard}
}

// List returns the caller's notifications, unread first. Supported query
// parameters: status, type.
func (h *NotificationHandler) List(c *gin.Context) {
	identity := getIdentity(c)

	query := h.db.WithContext(c.Request.Context()).
		Model(&models.Notification{}).
		Where("user_id = ?", identity.UserID)
	if notificationStatus := strings.TrimSpace(c.Query("status")); notificationStatus != "" {
		query = query.Where("status = ?", notificationStatus)
	}
	if notificationType := strings.TrimSpace(c.Query("type")); notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}

	var items []models.Notification
	if errList := query.Order("status DESC, created_at DESC").Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// ByUser returns notifications delivered to the given user. Self or admin.
func (h *NotificationHandler) ByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsSelfOrAdmin(userID); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	var items []models.Notification
	if errList := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// createNotificationRequest defines the request body for manual sends.
type createNotificationRequest struct {
	UserID   uint64          `json:"user_id"`
	Type     string          `json:"type"`
	Message  string          `json:"message"`
	Metadata json.RawMessage `json:"metadata"`
}

// Create sends a notification. Administrators only; the workflow handlers
// emit the regular ones.
func (h *NotificationHandler) Create(c *gin.Context) {
	identity := getIdentity(c)
	if !identity.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	var body createNotificationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}
	notificationType := strings.TrimSpace(body.Type)
	if !containsString(models.NotificationTypes(), notificationType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be one of: " + strings.Join(models.NotificationTypes(), ", ")})
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing message"})
		return
	}

	notification := models.Notification{
		UserID:   body.UserID,
		Type:     notificationType,
		Message:  strings.TrimSpace(body.Message),
		Metadata: []byte(body.Metadata),
		Status:   models.NotificationSent,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&notification).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create notification failed"})
		return
	}

	c.JSON(http.StatusCreated, notification)
}

// Get returns one notification. Notified user or admin only.
func (h *NotificationHandler) Get(c *gin.Context) {
	notification, ok := h.loadNotification(c)
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsOwnerOrAdmin(notification); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// UpdateStatus marks a notification read or unread.
func (h *NotificationHandler) UpdateStatus(c *gin.Context) {
	notification, ok := h.loadNotification(c)
	if !ok {
		return
	}

	var body updateStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if errApply := h.guard.Apply(c.Request.Context(), getIdentity(c), &notification, strings.TrimSpace(body.Status)); errApply != nil {
		writeDomainError(c, errApply)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": notification.ID, "status": body.Status})
}

// ReadAll marks every unread notification of the caller as read.
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	identity := getIdentity(c)

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Notification{}).
		Where("user_id = ? AND status = ?", identity.UserID, models.NotificationSent).
		Update("status", models.NotificationRead)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": res.RowsAffected})
}

// loadNotification fetches the notification addressed by the :id path
// parameter.
func (h *NotificationHandler) loadNotification(c *gin.Context) (models.Notification, bool) {
	notificationID, ok := parseIDParam(c, "id")
	if !ok {
		return models.Notification{}, false
	}

	var notification models.Notification
	errFind := h.db.WithContext(c.Request.Context()).First(&notification, notificationID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return models.Notification{}, false
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return models.Notification{}, false
	}
	return notification, true
}
