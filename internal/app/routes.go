package app

import (
	"github.com/Maulik-008/clock-software-sub000/internal/middleware"
	"github.com/Maulik-008/clock-software-sub000/internal/modules/alarm"
	"github.com/Maulik-008/clock-software-sub000/internal/modules/auth"
	"github.com/Maulik-008/clock-software-sub000/internal/modules/health"
	"github.com/Maulik-008/clock-software-sub000/internal/modules/offline"
	"github.com/Maulik-008/clock-software-sub000/internal/modules/todo"
	"github.com/Maulik-008/clock-software-sub000/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v2"

func (a *App) registerRoutes() {
	r := a.router
	authMW := middleware.Auth()

	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	mirror, err := alarm.NewMirror(a.cfg.Mirror, a.logger)
	if err != nil {
		a.logger.Warn("alarm mirror disabled", zap.Error(err))
	}
	alarmSvc := alarm.NewService(a.db, a.logger, mirror)

	api := r.Group(apiPrefix)
	auth.NewHandler(a.cfg).RegisterRoutes(api)
	alarm.NewHandler(alarmSvc).RegisterRoutes(api)
	todo.NewHandler(a.db).RegisterRoutes(api)
	health.RegisterRoutes(api, a.db, a.sched, authMW)
	offline.NewHandler(a.gateway).RegisterRoutes(api, authMW)

	// Everything that is not a local API route goes through the offline
	// gateway against the upstream origin.
	r.NoRoute(a.gateway.Handle)
}
