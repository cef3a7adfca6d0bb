package alarm

import (
	"io"
	"net/http"
	"strings"

	"github.com/Maulik-008/clock-software-sub000/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/alarms")

	g.GET("/catalog", h.catalog)
	g.GET("/custom", h.listCustom)
	g.POST("/custom", h.upload)
	g.DELETE("/custom/:id", h.delete)
	g.GET("/custom/:id/audio", h.serveAudio)
	g.GET("/custom/:id/url", h.resolveURL)
	g.GET("/storage", h.storageInfo)
	g.GET("/settings", h.getSettings)
	g.PUT("/settings", h.putSettings)
	g.GET("/current", h.current)
}

func (h *Handler) catalog(c *gin.Context) {
	response.OK(c, PredefinedCatalog())
}

func (h *Handler) listCustom(c *gin.Context) {
	response.OK(c, h.svc.GetAllCustomAlarms(c.Request.Context()))
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	// Reject oversized uploads before buffering the payload.
	if verdict := h.svc.CanAddFile(c.Request.Context(), fileHeader.Size); !verdict.Allowed {
		response.UnprocessableEntity(c, verdict.Reason)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = fileHeader.Filename
	}

	record, err := h.svc.AddCustomAlarm(c.Request.Context(), name, contentType, data)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.Created(c, record)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.DeleteCustomAlarm(c.Request.Context(), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) serveAudio(c *gin.Context) {
	record, ok := h.svc.GetCustomAlarm(c.Request.Context(), c.Param("id"))
	if !ok {
		response.NotFound(c)
		return
	}
	contentType := record.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	c.Header("Cache-Control", "private, max-age=31536000")
	c.Data(http.StatusOK, contentType, record.Data)
}

func (h *Handler) resolveURL(c *gin.Context) {
	url := h.svc.GetCustomAlarmURL(c.Request.Context(), c.Param("id"))
	if url == "" {
		response.OK(c, gin.H{"url": nil})
		return
	}
	response.OK(c, gin.H{"url": url})
}

func (h *Handler) storageInfo(c *gin.Context) {
	response.OK(c, h.svc.GetStorageInfo(c.Request.Context()))
}

func (h *Handler) getSettings(c *gin.Context) {
	response.OK(c, h.svc.GetAlarmSettings(c.Request.Context()))
}

type putSettingsDTO struct {
	Type string `json:"type" binding:"required"`
	ID   string `json:"id"   binding:"required"`
}

func (h *Handler) putSettings(c *gin.Context) {
	var dto putSettingsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var err error
	switch dto.Type {
	case AlarmTypePredefined:
		err = h.svc.SetSelectedPredefinedAlarm(c.Request.Context(), dto.ID)
	case AlarmTypeCustom:
		err = h.svc.SetSelectedCustomAlarm(c.Request.Context(), dto.ID)
	default:
		response.BadRequest(c, "type must be predefined or custom")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, h.svc.GetAlarmSettings(c.Request.Context()))
}

func (h *Handler) current(c *gin.Context) {
	path := h.svc.GetCurrentAlarmPath(c.Request.Context())
	settings := h.svc.GetAlarmSettings(c.Request.Context())
	out := gin.H{"path": path, "type": settings.SelectedAlarmType}
	if settings.SelectedAlarmType == AlarmTypeCustom {
		url := h.svc.GetCustomAlarmURL(c.Request.Context(), settings.SelectedAlarmID)
		if url == "" {
			out["url"] = nil
		} else {
			out["url"] = url
		}
	}
	response.OK(c, out)
}
