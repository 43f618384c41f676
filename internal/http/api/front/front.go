package front

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/access"
	"github.com/foodbridge-dev/foodbridge/internal/config"
	"github.com/foodbridge-dev/foodbridge/internal/donations"
	"github.com/foodbridge-dev/foodbridge/internal/http/api/front/handlers"
	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/points"
	"github.com/foodbridge-dev/foodbridge/internal/security"
	"github.com/foodbridge-dev/foodbridge/internal/status"
)

// RegisterFrontRoutes registers public and authenticated front-end routes.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, ledger *points.Store) {
	if r == nil || db == nil {
		return
	}

	guard := status.NewGuard(db)
	donationService := donations.NewService(db, ledger)

	front := r.Group("/v0/front")

	authHandler := handlers.NewAuthHandler(db, jwtCfg, ledger)
	front.POST("/register", authHandler.Register)
	front.POST("/login", authHandler.Login)

	donationHandler := handlers.NewDonationHandler(db, donationService, guard)
	front.GET("/donations/available", donationHandler.Available)

	offerHandler := handlers.NewOfferHandler(db, guard)
	front.GET("/offers/active", offerHandler.Active)

	categoryHandler := handlers.NewCategoryHandler(db)
	front.GET("/categories", categoryHandler.List)
	front.GET("/categories/tree", categoryHandler.Tree)
	front.GET("/categories/:id", categoryHandler.Get)

	authed := front.Group("")
	authed.Use(userAuthMiddleware(db, jwtCfg))

	profileHandler := handlers.NewProfileHandler(db)
	authed.GET("/profile", profileHandler.Get)
	authed.PUT("/profile", profileHandler.Update)
	authed.PUT("/profile/password", profileHandler.ChangePassword)

	pointsHandler := handlers.NewPointsHandler(ledger)
	authed.GET("/points/leaderboard", pointsHandler.Leaderboard)
	authed.GET("/points/:user_id", pointsHandler.GetBalance)
	authed.POST("/points/:user_id/add", pointsHandler.AddPoints)
	authed.POST("/points/transfer", pointsHandler.Transfer)

	authed.GET("/donations/all", donationHandler.ListAll)
	authed.GET("/donations", donationHandler.ListMine)
	authed.POST("/donations", donationHandler.Create)
	authed.GET("/donations/:id", donationHandler.Get)
	authed.PUT("/donations/:id", donationHandler.Update)
	authed.DELETE("/donations/:id", donationHandler.Delete)
	authed.PATCH("/donations/:id/status", donationHandler.UpdateStatus)
	authed.PATCH("/donations/:id/reserve", donationHandler.Reserve)
	authed.GET("/users/:user_id/donations", donationHandler.ByDonor)

	authed.GET("/offers", offerHandler.List)
	authed.POST("/offers", offerHandler.Create)
	authed.GET("/offers/:id", offerHandler.Get)
	authed.PUT("/offers/:id", offerHandler.Update)
	authed.DELETE("/offers/:id", offerHandler.Delete)
	authed.PATCH("/offers/:id/status", offerHandler.UpdateStatus)
	authed.GET("/merchants/:merchant_id/offers", offerHandler.ByMerchant)

	orderHandler := handlers.NewOrderHandler(db, guard)
	authed.GET("/orders", orderHandler.List)
	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.PUT("/orders/:id", orderHandler.Update)
	authed.DELETE("/orders/:id", orderHandler.Delete)
	authed.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
	authed.GET("/consumers/:consumer_id/orders", orderHandler.ByConsumer)

	transactionHandler := handlers.NewTransactionHandler(db, guard)
	authed.GET("/transactions", transactionHandler.List)
	authed.POST("/transactions", transactionHandler.Create)
	authed.GET("/transactions/:id", transactionHandler.Get)
	authed.PATCH("/transactions/:id/status", transactionHandler.UpdateStatus)
	authed.GET("/orders/:id/transaction", transactionHandler.ByOrder)

	reviewHandler := handlers.NewReviewHandler(db)
	authed.GET("/reviews", reviewHandler.List)
	authed.POST("/reviews", reviewHandler.Create)
	authed.GET("/reviews/:id", reviewHandler.Get)
	authed.PUT("/reviews/:id", reviewHandler.Update)
	authed.DELETE("/reviews/:id", reviewHandler.Delete)
	authed.GET("/orders/:id/review", reviewHandler.ByOrder)

	notificationHandler := handlers.NewNotificationHandler(db, guard)
	authed.GET("/notifications", notificationHandler.List)
	authed.POST("/notifications", notificationHandler.Create)
	authed.GET("/notifications/:id", notificationHandler.Get)
	authed.PATCH("/notifications/:id/status", notificationHandler.UpdateStatus)
	authed.POST("/notifications/read-all", notificationHandler.ReadAll)
	authed.GET("/users/:user_id/notifications", notificationHandler.ByUser)

	merchantHandler := handlers.NewMerchantHandler(db)
	authed.GET("/merchants", merchantHandler.List)
	authed.GET("/merchants/:merchant_id", merchantHandler.Get)
	authed.PUT("/merchants/:merchant_id", merchantHandler.Update)

	consumerHandler := handlers.NewConsumerHandler(db)
	authed.GET("/consumers/:consumer_id", consumerHandler.Get)
	authed.PUT("/consumers/:consumer_id", consumerHandler.Update)
}

// userAuthMiddleware validates user JWTs and loads the caller into context.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// The role in the token can go stale; the database row is
		// authoritative for authorization decisions.
		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("identity", access.IdentityFromUser(user))
		c.Next()
	}
}
