package alarm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Maulik-008/clock-software-sub000/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settingsKey = "alarm_settings"

const (
	AlarmTypePredefined = "predefined"
	AlarmTypeCustom     = "custom"
)

// Settings is the persisted alarm selection, read and written as a whole.
type Settings struct {
	SelectedAlarmID   string `json:"selected_alarm_id"`
	SelectedAlarmType string `json:"selected_alarm_type"`
}

// DefaultSettings points at the catalog's default sound.
func DefaultSettings() Settings {
	return Settings{SelectedAlarmID: defaultAlarmID, SelectedAlarmType: AlarmTypePredefined}
}

// GetAlarmSettings loads the selection record. A missing row or corrupt
// JSON value degrades to the default, never an error.
func (s *Service) GetAlarmSettings(ctx context.Context) Settings {
	var opt models.OptionModel
	err := s.db.WithContext(ctx).Where("name = ?", settingsKey).First(&opt).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("alarm settings read failed", zap.Error(err))
		}
		return DefaultSettings()
	}

	var settings Settings
	if err := json.Unmarshal([]byte(opt.Value), &settings); err != nil {
		s.log.Warn("alarm settings value is not valid JSON, using default", zap.Error(err))
		return DefaultSettings()
	}
	if settings.SelectedAlarmID == "" || settings.SelectedAlarmType == "" {
		return DefaultSettings()
	}
	return settings
}

// SetSelectedPredefinedAlarm selects a catalog sound. An unknown id is
// logged and ignored, leaving the stored selection unchanged.
func (s *Service) SetSelectedPredefinedAlarm(ctx context.Context, id string) error {
	if _, ok := predefinedByID(id); !ok {
		s.log.Warn("ignoring selection of unknown predefined alarm", zap.String("id", id))
		return nil
	}
	return s.persistSettings(ctx, Settings{SelectedAlarmID: id, SelectedAlarmType: AlarmTypePredefined})
}

// SetSelectedCustomAlarm selects an uploaded sound. The referenced record is
// not checked for existence; a dangling id resolves to no sound at play time.
func (s *Service) SetSelectedCustomAlarm(ctx context.Context, id string) error {
	return s.persistSettings(ctx, Settings{SelectedAlarmID: id, SelectedAlarmType: AlarmTypeCustom})
}

// GetCurrentAlarmPath returns the catalog path of a predefined selection,
// or the raw record id for a custom one. Custom ids must be routed through
// GetCustomAlarmURL by the caller.
func (s *Service) GetCurrentAlarmPath(ctx context.Context) string {
	settings := s.GetAlarmSettings(ctx)
	if settings.SelectedAlarmType == AlarmTypePredefined {
		if p, ok := predefinedByID(settings.SelectedAlarmID); ok {
			return p.Path
		}
		def, _ := predefinedByID(defaultAlarmID)
		return def.Path
	}
	return settings.SelectedAlarmID
}

func (s *Service) persistSettings(ctx context.Context, settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	opt := models.OptionModel{Name: settingsKey, Value: string(data)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&opt).Error
	if err != nil {
		return fmt.Errorf("persist alarm settings: %w", err)
	}
	return nil
}
