package health

import (
	"time"

	"github.com/Maulik-008/clock-software-sub000/internal/pkg/cron"
	"github.com/Maulik-008/clock-software-sub000/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var processStart = time.Now()

// RegisterRoutes wires the health check and cron introspection endpoints.
func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, sched *cron.Scheduler, authMW gin.HandlerFunc) {
	g := rg.Group("/health")

	g.GET("", func(c *gin.Context) {
		dbOK := true
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbOK = false
		}
		response.OK(c, gin.H{
			"status":   "ok",
			"database": dbOK,
			"uptime":   time.Since(processStart).Seconds(),
		})
	})

	g.GET("/cron", authMW, func(c *gin.Context) {
		response.OK(c, sched.List())
	})

	g.POST("/cron/:name/run", authMW, func(c *gin.Context) {
		if err := sched.Run(c.Request.Context(), c.Param("name")); err != nil {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.NoContent(c)
	})
}
