package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/access"
	"github.com/foodbridge-dev/foodbridge/internal/config"
	"github.com/foodbridge-dev/foodbridge/internal/http/api/admin/handlers"
	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/security"
)

// RegisterAdminRoutes registers the administrator surface.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig) {
	if r == nil || db == nil {
		return
	}

	group := r.Group("/v0/admin")
	group.Use(adminAuthMiddleware(db, jwtCfg))

	userHandler := handlers.NewUserAdminHandler(db)
	group.GET("/users", userHandler.List)
	group.GET("/users/:user_id", userHandler.Get)
	group.DELETE("/users/:user_id", userHandler.Delete)

	merchantHandler := handlers.NewMerchantAdminHandler(db)
	group.PATCH("/merchants/:user_id/verify", merchantHandler.Verify)
	group.PATCH("/merchants/:user_id/price-limit", merchantHandler.PriceLimit)

	categoryHandler := handlers.NewCategoryAdminHandler(db)
	group.POST("/categories", categoryHandler.Create)
	group.PUT("/categories/:id", categoryHandler.Update)
	group.DELETE("/categories/:id", categoryHandler.Delete)

	settingsHandler := handlers.NewSettingsAdminHandler(db)
	group.GET("/settings", settingsHandler.List)
	group.PUT("/settings/:key", settingsHandler.Put)
}

// adminAuthMiddleware validates user JWTs and requires administrator
// privileges on the stored account.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" || token == strings.TrimSpace(authHeader) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator access required"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("identity", access.IdentityFromUser(user))
		c.Next()
	}
}
