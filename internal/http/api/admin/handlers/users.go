package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
)

// UserAdminHandler manages marketplace accounts.
type UserAdminHandler struct {
	db *gorm.DB
}

// NewUserAdminHandler constructs a UserAdminHandler.
func NewUserAdminHandler(db *gorm.DB) *UserAdminHandler {
	return &UserAdminHandler{db: db}
}

// userView strips the password hash from responses.
type userView struct {
	ID             uint64 `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Address        string `json:"address"`
	ProfilePicture string `json:"profile_picture"`
	IsStaff        bool   `json:"is_staff"`
	IsSuperuser    bool   `json:"is_superuser"`
}

func viewOf(user models.User) userView {
	return userView{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           user.Role,
		Address:        user.Address,
		ProfilePicture: user.ProfilePicture,
		IsStaff:        user.IsStaff,
		IsSuperuser:    user.IsSuperuser,
	}
}

// List returns accounts, optionally filtered by role.
func (h *UserAdminHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if errList := query.Order("created_at DESC").Find(&users).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, viewOf(user))
	}

	c.JSON(http.StatusOK, gin.H{"users": views})
}

// Get returns one account.
func (h *UserAdminHandler) Get(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, viewOf(user))
}

// Delete removes an account and its dependent rows.
func (h *UserAdminHandler) Delete(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errProfile := tx.Delete(&models.Merchant{}, "user_id = ?", userID).Error; errProfile != nil {
			return errProfile
		}
		if errProfile := tx.Delete(&models.Consumer{}, "user_id = ?", userID).Error; errProfile != nil {
			return errProfile
		}
		if errPoints := tx.Delete(&models.PointAccount{}, "user_id = ?", userID).Error; errPoints != nil {
			return errPoints
		}
		res := tx.Delete(&models.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(errTx, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// parseIDParam parses a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	parsed, errParse := strconv.ParseUint(c.Param(name), 10, 64)
	if errParse != nil || parsed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return parsed, true
}
