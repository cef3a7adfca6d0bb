package auth

import (
	"time"

	"github.com/Maulik-008/clock-software-sub000/internal/config"
	"github.com/Maulik-008/clock-software-sub000/internal/pkg/jwt"
	"github.com/Maulik-008/clock-software-sub000/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

// Handler issues admin tokens for the maintenance endpoints.
type Handler struct{ cfg *config.AppConfig }

func NewHandler(cfg *config.AppConfig) *Handler { return &Handler{cfg: cfg} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/login", h.login)
}

type loginDTO struct {
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var dto loginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if h.cfg.AdminPassword == "" {
		response.Unauthorized(c)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPassword), []byte(dto.Password)); err != nil {
		response.Unauthorized(c)
		return
	}

	token, err := jwt.Sign("admin", tokenTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "expires_in": int64(tokenTTL.Seconds())})
}
