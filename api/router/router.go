package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/switchcollectorpro/switchcollectorpro/api/handler"
	"github.com/switchcollectorpro/switchcollectorpro/internal/service"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"
)

// SetupRouter 设置路由
func SetupRouter(mode string, poller *service.PollerService) *gin.Engine {
	// 设置Gin模式
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	r := gin.New()
	// 端口名包含 '/'，按编码后的原始路径匹配（GE1%2F0%2F1）
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(gin.Recovery())
	r.Use(CORSMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())

	collectorHandler := handler.NewCollectorHandler(poller)

	// 根路径
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "Switch Collector Pro",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", collectorHandler.Health)
		v1.GET("/snapshot", collectorHandler.Snapshot)
		v1.GET("/status", collectorHandler.Status)
		v1.POST("/poll", collectorHandler.PollNow)
		v1.GET("/energy", collectorHandler.Energy)
		v1.GET("/ports/:name/devices", collectorHandler.PortDevices)
		v1.GET("/devices", collectorHandler.Devices)
		v1.GET("/history", collectorHandler.History)
		v1.GET("/history/:id", collectorHandler.HistoryDetail)
		v1.POST("/test", collectorHandler.TestConnection)
	}

	// 404处理
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
			"path":    c.Request.URL.Path,
		})
	})

	return r
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware 请求ID中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// LoggingMiddleware 日志中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     statusCode,
			"duration":   time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		if statusCode >= 500 {
			entry.Error("HTTP Request")
			return
		}
		entry.Info("HTTP Request")
	}
}
