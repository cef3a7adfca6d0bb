package models

import "time"

// CustomAlarmModel stores one user-uploaded alarm sound. The audio payload
// lives inline; records are immutable after creation.
type CustomAlarmModel struct {
	ID          string    `json:"id"         gorm:"type:varchar(64);primaryKey"`
	Name        string    `json:"name"       gorm:"not null"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"          gorm:"type:longblob"`
	Size        int64     `json:"size"       gorm:"not null"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func (CustomAlarmModel) TableName() string { return "custom_alarms" }

// OptionModel is a generic key-value store for settings records.
type OptionModel struct {
	ID    uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	Name  string `json:"name"  gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:longtext"` // JSON-encoded value
}

func (OptionModel) TableName() string { return "options" }
