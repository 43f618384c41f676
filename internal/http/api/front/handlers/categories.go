package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
)

// CategoryHandler handles public category reads. Writes live on the admin
// surface.
type CategoryHandler struct {
	db *gorm.DB
}

// NewCategoryHandler constructs a CategoryHandler.
func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

// List returns all categories ordered by name.
func (h *CategoryHandler) List(c *gin.Context) {
	var items []models.Category
	if errList := h.db.WithContext(c.Request.Context()).
		Order("name ASC").
		Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": items})
}

// categoryNode is a category with its nested children.
type categoryNode struct {
	models.Category
	Children []*categoryNode `json:"children"`
}

// Tree returns categories as a parent/child forest.
func (h *CategoryHandler) Tree(c *gin.Context) {
	var items []models.Category
	if errList := h.db.WithContext(c.Request.Context()).
		Order("name ASC").
		Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	nodes := make(map[uint64]*categoryNode, len(items))
	for _, item := range items {
		nodes[item.ID] = &categoryNode{Category: item, Children: []*categoryNode{}}
	}
	roots := make([]*categoryNode, 0, len(items))
	for _, item := range items {
		node := nodes[item.ID]
		if node.ParentID != nil {
			if parent, okParent := nodes[*node.ParentID]; okParent {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	c.JSON(http.StatusOK, gin.H{"categories": roots})
}

// Get returns one category.
func (h *CategoryHandler) Get(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var category models.Category
	errFind := h.db.WithContext(c.Request.Context()).First(&category, categoryID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, category)
}
