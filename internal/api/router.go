package api

import (
	"net/http"
	"slices"
	"time"

	"PenaltyHub/internal/config"
	"PenaltyHub/internal/logger"
	"PenaltyHub/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter 注册中间件与全部路由
func NewRouter(cfg config.ServerConfig, users *service.UserService, matches *service.MatchService, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinLogger(log), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// pprof 只在显式开启时注册
	if cfg.Pprof {
		pprof.Register(r)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(users, log)
	auth := r.Group("/auth")
	auth.POST("/register", authHandler.RegisterEmail) // 旧前端使用的路径
	auth.POST("/register/email", authHandler.RegisterEmail)
	auth.POST("/register/nickname", authHandler.RegisterNickname)
	auth.POST("/login/email", authHandler.LoginEmail)
	auth.POST("/login/nickname", authHandler.LoginNickname)

	userHandler := NewUserHandler(users, log)
	u := r.Group("/users/:uid")
	u.GET("", userHandler.GetProfile)
	u.PUT("", userHandler.UpdateProfile)
	u.PATCH("", userHandler.UpdateProfile)
	u.GET("/stats", userHandler.GetStats)
	u.POST("/results", userHandler.RecordResult)
	u.POST("/avatar", userHandler.UploadAvatar)

	matchHandler := NewMatchHandler(matches, log)
	r.POST("/matches", matchHandler.CreateMatch)
	r.GET("/matches", matchHandler.ListMatches)
	m := r.Group("/matches/:match_id")
	m.GET("", matchHandler.GetMatch)
	m.PUT("/score", matchHandler.UpdateScore)
	m.GET("/stats", matchHandler.GetStats)
	m.PUT("/stats", matchHandler.UpdateStats)
	m.POST("/events", matchHandler.AppendEvent)

	return r
}

// corsConfig 未配置或包含 * 时放开所有来源（此时不允许携带凭证）
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}
	c.AllowOrigins = origins
	return c
}
