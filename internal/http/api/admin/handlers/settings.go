package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/settings"
)

// SettingsAdminHandler manages runtime settings stored in the database.
type SettingsAdminHandler struct {
	db *gorm.DB
}

// NewSettingsAdminHandler constructs a SettingsAdminHandler.
func NewSettingsAdminHandler(db *gorm.DB) *SettingsAdminHandler {
	return &SettingsAdminHandler{db: db}
}

// List returns all stored settings.
func (h *SettingsAdminHandler) List(c *gin.Context) {
	var items []models.Setting
	if errList := h.db.WithContext(c.Request.Context()).
		Order("key ASC").
		Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": items})
}

// putSettingRequest defines the request body for setting writes.
type putSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// Put upserts one setting and refreshes the in-memory snapshot.
func (h *SettingsAdminHandler) Put(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing key"})
		return
	}

	var body putSettingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing value"})
		return
	}
	if !json.Valid(body.Value) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be valid json"})
		return
	}

	setting := models.Setting{Key: key, Value: body.Value}
	if errSave := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save setting failed"})
		return
	}

	if errRefresh := settings.Refresh(c.Request.Context(), h.db); errRefresh != nil {
		log.WithError(errRefresh).Warn("settings snapshot refresh failed")
	}

	c.JSON(http.StatusOK, setting)
}
