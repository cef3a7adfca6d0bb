package alarm

import (
	"context"
	"testing"

	"github.com/Maulik-008/clock-software-sub000/internal/models"
)

func TestAlarmSettingsDefault(t *testing.T) {
	svc := newTestService(t)

	got := svc.GetAlarmSettings(context.Background())
	if got.SelectedAlarmID != "alarm_1" || got.SelectedAlarmType != AlarmTypePredefined {
		t.Fatalf("default settings = %+v", got)
	}
}

func TestSelectPredefinedAlarm(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SetSelectedPredefinedAlarm(ctx, "alarm_3"); err != nil {
		t.Fatalf("SetSelectedPredefinedAlarm: %v", err)
	}

	got := svc.GetAlarmSettings(ctx)
	if got.SelectedAlarmID != "alarm_3" || got.SelectedAlarmType != AlarmTypePredefined {
		t.Fatalf("settings = %+v", got)
	}
	if path := svc.GetCurrentAlarmPath(ctx); path != "/audio/alarm_3.mp3" {
		t.Fatalf("path = %q", path)
	}
}

func TestSelectUnknownPredefinedAlarmIgnored(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SetSelectedPredefinedAlarm(ctx, "alarm_5"); err != nil {
		t.Fatalf("seed selection: %v", err)
	}
	if err := svc.SetSelectedPredefinedAlarm(ctx, "alarm_99"); err != nil {
		t.Fatalf("unknown id must not error: %v", err)
	}

	got := svc.GetAlarmSettings(ctx)
	if got.SelectedAlarmID != "alarm_5" {
		t.Fatalf("unknown id changed the stored selection: %+v", got)
	}
}

func TestSelectCustomAlarmWithoutValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// No record with this id exists; the selection still persists and the
	// dangling reference surfaces at resolution time.
	if err := svc.SetSelectedCustomAlarm(ctx, "1700000000000-deadbeef"); err != nil {
		t.Fatalf("SetSelectedCustomAlarm: %v", err)
	}

	got := svc.GetAlarmSettings(ctx)
	if got.SelectedAlarmID != "1700000000000-deadbeef" || got.SelectedAlarmType != AlarmTypeCustom {
		t.Fatalf("settings = %+v", got)
	}
	if url := svc.GetCustomAlarmURL(ctx, got.SelectedAlarmID); url != "" {
		t.Fatalf("dangling selection resolved to %q", url)
	}
	if path := svc.GetCurrentAlarmPath(ctx); path != "1700000000000-deadbeef" {
		t.Fatalf("custom path = %q", path)
	}
}

func TestCorruptSettingsRecoverToDefault(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	opt := models.OptionModel{Name: settingsKey, Value: "{not json"}
	if err := svc.db.Create(&opt).Error; err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	got := svc.GetAlarmSettings(ctx)
	if got != DefaultSettings() {
		t.Fatalf("corrupt value should read as the default, got %+v", got)
	}

	// A later write repairs the row in place.
	if err := svc.SetSelectedPredefinedAlarm(ctx, "alarm_2"); err != nil {
		t.Fatalf("SetSelectedPredefinedAlarm: %v", err)
	}
	if got := svc.GetAlarmSettings(ctx); got.SelectedAlarmID != "alarm_2" {
		t.Fatalf("settings after repair = %+v", got)
	}

	var count int64
	svc.db.Model(&models.OptionModel{}).Where("name = ?", settingsKey).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single settings row, got %d", count)
	}
}

func TestPredefinedCatalog(t *testing.T) {
	catalog := PredefinedCatalog()
	if len(catalog) != 5 {
		t.Fatalf("catalog size = %d", len(catalog))
	}
	if catalog[0].ID != "alarm_1" || catalog[0].Path != "/audio/alarm_1.mp3" {
		t.Fatalf("first entry = %+v", catalog[0])
	}

	// Mutating the returned slice must not leak into the package state.
	catalog[0].Name = "tampered"
	if fresh := PredefinedCatalog(); fresh[0].Name == "tampered" {
		t.Fatal("catalog copy is shared with callers")
	}
}
