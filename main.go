package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/lunaticat/rpgmarket/api/rest"
	"github.com/lunaticat/rpgmarket/audit"
	"github.com/lunaticat/rpgmarket/cache"
	"github.com/lunaticat/rpgmarket/config"
	dbadapter "github.com/lunaticat/rpgmarket/db"
	"github.com/lunaticat/rpgmarket/game/economy"
	mw "github.com/lunaticat/rpgmarket/middleware"
	"github.com/lunaticat/rpgmarket/model"
	"github.com/lunaticat/rpgmarket/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(nil)

	// ---- Cache ----
	c, err := cache.NewCache(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- Services ----
	ecoSvc := economy.NewService(db, cfg.Game, logger)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	charH := apirest.NewCharacterHandler(db, cfg.Game, logger)
	itemH := apirest.NewItemHandler(db, logger)
	ecoH := apirest.NewEconomyHandler(ecoSvc, auditSvc, logger)
	rankH := apirest.NewRankingHandler(db, c, logger)

	api := r.Group("/api")
	{
		api.POST("/sign_up", authH.SignUp)
		api.POST("/sign_in", authH.SignIn)

		api.GET("/char/:char_id", mw.OptionalAuth(cfg.Security, c), charH.Detail)
		api.GET("/char/equip/:char_id", charH.Equipped)

		api.GET("/items", itemH.List)
		api.GET("/items/:item_code", itemH.Detail)
		api.POST("/items", itemH.Create)
		api.PATCH("/items/:item_code", itemH.Update)

		api.GET("/ranking/money", rankH.TopMoney)

		authed := api.Group("", mw.Auth(cfg.Security, c))
		authed.POST("/char", charH.Create)
		authed.DELETE("/char/:char_id", charH.Delete)
		authed.PATCH("/char/:char_id", charH.FarmMoney)
		authed.GET("/char/inventory/:char_id", charH.Inventory)
		authed.POST("/equip/:char_id", ecoH.Equip)
		authed.POST("/unEquip/:char_id", ecoH.Unequip)
		authed.POST("/buy/:char_id", ecoH.Buy)
		authed.POST("/sell/:char_id", ecoH.Sell)
	}

	// Periodic leaderboard rebuild.
	refreshEvery := time.Duration(cfg.Game.RankingRefreshMins) * time.Minute
	sched.AddTicker("ranking_refresh", refreshEvery, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := rankH.Refresh(ctx); err != nil {
			logger.Warn("ranking refresh failed", zap.Error(err))
		}
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("HTTP server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
