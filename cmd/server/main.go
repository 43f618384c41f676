package main

import (
	"context"
	"flag"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/foodbridge-dev/foodbridge/internal/config"
	dbpkg "github.com/foodbridge-dev/foodbridge/internal/db"
	"github.com/foodbridge-dev/foodbridge/internal/http/api/admin"
	"github.com/foodbridge-dev/foodbridge/internal/http/api/front"
	"github.com/foodbridge-dev/foodbridge/internal/logging"
	"github.com/foodbridge-dev/foodbridge/internal/points"
	"github.com/foodbridge-dev/foodbridge/internal/settings"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, errLoad := config.Load(config.ResolveConfigPath(*configPath))
	if errLoad != nil {
		log.WithError(errLoad).Fatal("load config failed")
	}
	logging.Setup(cfg.Log)

	conn, errOpen := dbpkg.Open(cfg.Database.DSN)
	if errOpen != nil {
		log.WithError(errOpen).Fatal("open database failed")
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		log.WithError(errMigrate).Fatal("migrate database failed")
	}

	if errRefresh := settings.Refresh(context.Background(), conn); errRefresh != nil {
		log.WithError(errRefresh).Warn("settings snapshot refresh failed, using defaults")
	}

	var cache *points.LeaderboardCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if errPing := client.Ping(context.Background()).Err(); errPing != nil {
			log.WithError(errPing).Warn("redis unreachable, leaderboard cache disabled")
		} else {
			cache = points.NewLeaderboardCache(client)
			log.WithField("addr", cfg.Redis.Addr).Info("leaderboard cache enabled")
		}
	}
	ledger := points.NewStore(conn, cache)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	front.RegisterFrontRoutes(router, conn, cfg.JWT, ledger)
	admin.RegisterAdminRoutes(router, conn, cfg.JWT)

	log.WithField("addr", cfg.Server.Addr).Info("server starting")
	if errRun := router.Run(cfg.Server.Addr); errRun != nil {
		log.WithError(errRun).Fatal("server exited")
	}
}
