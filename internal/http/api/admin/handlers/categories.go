package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
)

// CategoryAdminHandler manages the category taxonomy.
type CategoryAdminHandler struct {
	db *gorm.DB
}

// NewCategoryAdminHandler constructs a CategoryAdminHandler.
func NewCategoryAdminHandler(db *gorm.DB) *CategoryAdminHandler {
	return &CategoryAdminHandler{db: db}
}

// categoryRequest defines the request body for category writes.
type categoryRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *uint64 `json:"parent_id"`
}

// Create adds a category.
func (h *CategoryAdminHandler) Create(c *gin.Context) {
	var body categoryRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	if body.ParentID != nil && !h.categoryExists(c, *body.ParentID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parent category not found"})
		return
	}

	var exists models.Category
	if errCheck := h.db.WithContext(c.Request.Context()).Where("name = ?", name).First(&exists).Error; errCheck == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "category name already exists"})
		return
	} else if !errors.Is(errCheck, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	category := models.Category{
		Name:        name,
		Description: body.Description,
		ParentID:    body.ParentID,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&category).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create category failed"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// Update changes a category.
func (h *CategoryAdminHandler) Update(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body categoryRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(body.Name); name != "" {
		updates["name"] = name
	}
	if body.Description != "" {
		updates["description"] = body.Description
	}
	if body.ParentID != nil {
		if *body.ParentID == categoryID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category cannot be its own parent"})
			return
		}
		if !h.categoryExists(c, *body.ParentID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parent category not found"})
			return
		}
		updates["parent_id"] = *body.ParentID
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Category{}).
		Where("id = ?", categoryID).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Delete removes a category. Children are detached, not deleted.
func (h *CategoryAdminHandler) Delete(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errDetach := tx.Model(&models.Category{}).
			Where("parent_id = ?", categoryID).
			Update("parent_id", nil).Error; errDetach != nil {
			return errDetach
		}
		res := tx.Delete(&models.Category{}, categoryID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(errTx, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *CategoryAdminHandler) categoryExists(c *gin.Context, categoryID uint64) bool {
	var count int64
	if errCount := h.db.WithContext(c.Request.Context()).
		Model(&models.Category{}).
		Where("id = ?", categoryID).
		Count(&count).Error; errCount != nil {
		return false
	}
	return count > 0
}
