package todo

import (
	"strings"
	"time"

	"github.com/Maulik-008/clock-software-sub000/internal/models"
	"github.com/Maulik-008/clock-software-sub000/internal/pkg/pagination"
	"github.com/Maulik-008/clock-software-sub000/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves the to-do list shown next to the timer widgets.
type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/todos")

	g.GET("", h.list)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.DELETE("", h.clearDone)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	tx := h.db.Model(&models.TodoModel{}).Order("created_at DESC")
	if state := c.Query("state"); state == "open" {
		tx = tx.Where("done = ?", false)
	} else if state == "done" {
		tx = tx.Where("done = ?", true)
	}

	var todos []models.TodoModel
	pag, err := pagination.Paginate(tx, q, &todos)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, todos, pag)
}

type createTodoDTO struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) create(c *gin.Context) {
	var dto createTodoDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	text := strings.TrimSpace(dto.Text)
	if text == "" {
		response.BadRequest(c, "text is required")
		return
	}

	todo := models.TodoModel{Text: text}
	if err := h.db.Create(&todo).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, todo)
}

type updateTodoDTO struct {
	Text *string `json:"text"`
	Done *bool   `json:"done"`
}

func (h *Handler) update(c *gin.Context) {
	var todo models.TodoModel
	if err := h.db.First(&todo, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c)
		return
	}

	var dto updateTodoDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Text != nil {
		text := strings.TrimSpace(*dto.Text)
		if text == "" {
			response.BadRequest(c, "text cannot be empty")
			return
		}
		todo.Text = text
	}
	if dto.Done != nil {
		todo.Done = *dto.Done
		if todo.Done {
			now := time.Now()
			todo.CompletedAt = &now
		} else {
			todo.CompletedAt = nil
		}
	}

	if err := h.db.Save(&todo).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, todo)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.db.Delete(&models.TodoModel{}, "id = ?", c.Param("id")).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) clearDone(c *gin.Context) {
	res := h.db.Where("done = ?", true).Delete(&models.TodoModel{})
	if res.Error != nil {
		response.InternalError(c, res.Error)
		return
	}
	response.OK(c, gin.H{"deleted": res.RowsAffected})
}
