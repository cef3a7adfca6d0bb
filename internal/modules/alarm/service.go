package alarm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Maulik-008/clock-software-sub000/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// MaxFileSize caps a single uploaded sound.
	MaxFileSize = 5 << 20 // 5 MiB
	// MaxTotalStorage caps the sum of all stored sounds.
	MaxTotalStorage = 50 << 20 // 50 MiB
)

// Allowance is the verdict of a quota check.
type Allowance struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// StorageInfo is an aggregate snapshot of custom alarm storage usage.
type StorageInfo struct {
	TotalUsed      int64   `json:"total_used"`
	MaxStorage     int64   `json:"max_storage"`
	PercentageUsed float64 `json:"percentage_used"`
	AlarmsCount    int64   `json:"alarms_count"`
	MaxFileSize    int64   `json:"max_file_size"`
}

// Service manages user-uploaded alarm sounds and the alarm selection.
type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	mirror *Mirror
}

func NewService(db *gorm.DB, log *zap.Logger, mirror *Mirror) *Service {
	return &Service{db: db, log: log, mirror: mirror}
}

// CanAddFile reports whether a file of the given size fits the per-file and
// global caps. Pure predicate; a failing usage read degrades to zero usage.
func (s *Service) CanAddFile(ctx context.Context, size int64) Allowance {
	if size > MaxFileSize {
		return Allowance{Reason: fmt.Sprintf("file exceeds the %d MB per-file limit", MaxFileSize>>20)}
	}
	if s.storageUsed(ctx)+size > MaxTotalStorage {
		return Allowance{Reason: fmt.Sprintf("not enough space: adding this file would exceed the %d MB storage limit", MaxTotalStorage>>20)}
	}
	return Allowance{Allowed: true}
}

// AddCustomAlarm validates and stores one uploaded sound. The quota check
// and the insert are deliberately not one transaction; concurrent uploads
// racing past the cap is accepted for this single-user tool.
func (s *Service) AddCustomAlarm(ctx context.Context, name, contentType string, data []byte) (*models.CustomAlarmModel, error) {
	if !strings.HasPrefix(contentType, "audio/") {
		return nil, fmt.Errorf("invalid file type %q: only audio files can be used as alarms", contentType)
	}
	if verdict := s.CanAddFile(ctx, int64(len(data))); !verdict.Allowed {
		return nil, fmt.Errorf("%s", verdict.Reason)
	}

	record := &models.CustomAlarmModel{
		ID:          newAlarmID(),
		Name:        strings.TrimSpace(name),
		ContentType: contentType,
		Data:        data,
		Size:        int64(len(data)),
		UploadedAt:  time.Now(),
	}
	if record.Name == "" {
		record.Name = record.ID
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("store alarm: %w", err)
	}

	if s.mirror != nil {
		go s.mirror.Put(record.ID, record.ContentType, data)
	}
	return record, nil
}

// DeleteCustomAlarm removes a record. Deleting an absent id is a no-op.
func (s *Service) DeleteCustomAlarm(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.CustomAlarmModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete alarm: %w", err)
	}
	if s.mirror != nil {
		go s.mirror.Delete(id)
	}
	return nil
}

// GetAllCustomAlarms lists every stored alarm without the audio payload.
// Order is not contractual. A failing read degrades to an empty list.
func (s *Service) GetAllCustomAlarms(ctx context.Context) []models.CustomAlarmModel {
	var alarms []models.CustomAlarmModel
	err := s.db.WithContext(ctx).
		Select("id", "name", "content_type", "size", "uploaded_at").
		Find(&alarms).Error
	if err != nil {
		s.log.Warn("custom alarm scan failed", zap.Error(err))
		return nil
	}
	return alarms
}

// GetCustomAlarm loads one full record including its audio payload.
func (s *Service) GetCustomAlarm(ctx context.Context, id string) (*models.CustomAlarmModel, bool) {
	var record models.CustomAlarmModel
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		return nil, false
	}
	return &record, true
}

// GetCustomAlarmURL resolves an id into a playable audio URL, or "" when
// the record does not exist. Resolution is lazy: a dangling selection is
// detected here, not at selection time.
func (s *Service) GetCustomAlarmURL(ctx context.Context, id string) string {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CustomAlarmModel{}).Where("id = ?", id).Count(&count).Error; err != nil || count == 0 {
		return ""
	}
	return "/api/v2/alarms/custom/" + id + "/audio"
}

// GetStorageInfo computes a fresh aggregate on every call; no cached
// counters exist.
func (s *Service) GetStorageInfo(ctx context.Context) StorageInfo {
	used := s.storageUsed(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CustomAlarmModel{}).Count(&count).Error; err != nil {
		s.log.Warn("alarm count failed", zap.Error(err))
	}

	return StorageInfo{
		TotalUsed:      used,
		MaxStorage:     MaxTotalStorage,
		PercentageUsed: float64(used) / float64(MaxTotalStorage) * 100,
		AlarmsCount:    count,
		MaxFileSize:    MaxFileSize,
	}
}

func (s *Service) storageUsed(ctx context.Context) int64 {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.CustomAlarmModel{}).
		Select("COALESCE(SUM(size), 0)").Scan(&total).Error
	if err != nil {
		s.log.Warn("storage usage read failed", zap.Error(err))
		return 0
	}
	return total
}

// newAlarmID builds a timestamp-plus-random-suffix id. Collisions are
// treated as negligible, not cryptographically impossible.
func newAlarmID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + suffix
}
