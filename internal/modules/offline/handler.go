package offline

import (
	"github.com/Maulik-008/clock-software-sub000/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler exposes cache maintenance endpoints for the admin panel.
type Handler struct{ router *Router }

func NewHandler(router *Router) *Handler { return &Handler{router: router} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/offline", authMW)

	g.GET("/generations", h.listGenerations)
	g.POST("/install", h.install)
	g.POST("/activate", h.activate)
	g.DELETE("/cache", h.purge)
}

func (h *Handler) listGenerations(c *gin.Context) {
	generations, err := h.router.Generations(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{
		"current":    h.router.CurrentGenerations(),
		"registered": generations,
	})
}

func (h *Handler) install(c *gin.Context) {
	if err := h.router.Install(c.Request.Context()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) activate(c *gin.Context) {
	if err := h.router.Activate(c.Request.Context()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) purge(c *gin.Context) {
	deleted, err := h.router.Purge(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": deleted})
}
