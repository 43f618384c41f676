package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/security"
)

// ProfileHandler handles the authenticated user's own profile.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// Get returns the caller's account and role profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	identity := getIdentity(c)

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, identity.UserID).Error; errFind != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	payload := gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"role":            user.Role,
		"address":         user.Address,
		"profile_picture": user.ProfilePicture,
		"created_at":      user.CreatedAt,
	}

	switch user.Role {
	case models.RoleMerchant:
		var profile models.Merchant
		if errFind := h.db.WithContext(c.Request.Context()).First(&profile, "user_id = ?", user.ID).Error; errFind == nil {
			payload["merchant"] = profile
		}
	case models.RoleConsumer:
		var profile models.Consumer
		if errFind := h.db.WithContext(c.Request.Context()).First(&profile, "user_id = ?", user.ID).Error; errFind == nil {
			payload["consumer"] = profile
		}
	}

	c.JSON(http.StatusOK, payload)
}

// updateProfileRequest defines the request body for profile updates.
type updateProfileRequest struct {
	Username       *string `json:"username"`
	Address        *string `json:"address"`
	ProfilePicture *string `json:"profile_picture"`
}

// Update changes the caller's mutable account fields.
func (h *ProfileHandler) Update(c *gin.Context) {
	identity := getIdentity(c)

	var body updateProfileRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Username != nil {
		trimmed := strings.TrimSpace(*body.Username)
		if trimmed == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username cannot be empty"})
			return
		}
		updates["username"] = trimmed
	}
	if body.Address != nil {
		updates["address"] = strings.TrimSpace(*body.Address)
	}
	if body.ProfilePicture != nil {
		updates["profile_picture"] = strings.TrimSpace(*body.ProfilePicture)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", identity.UserID).
		Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// changePasswordRequest defines the request body for password changes.
type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword rotates the caller's password after verifying the old one.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	identity := getIdentity(c)

	var body changePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	newPassword := strings.TrimSpace(body.NewPassword)
	if newPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing new_password"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, identity.UserID).Error; errFind != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if !security.CheckPassword(user.Password, strings.TrimSpace(body.OldPassword)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	hash, errHash := security.HashPassword(newPassword)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("password", hash).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}
