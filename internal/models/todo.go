package models

import "time"

// TodoModel is one entry of the to-do list shown next to the timers.
type TodoModel struct {
	Base
	Text        string     `json:"text"      gorm:"not null"`
	Done        bool       `json:"done"      gorm:"index"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (TodoModel) TableName() string { return "todos" }
