package alarm

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Maulik-008/clock-software-sub000/internal/database"
	"github.com/Maulik-008/clock-software-sub000/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, zap.NewNop(), nil)
}

func TestAddCustomAlarm(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.AddCustomAlarm(ctx, "Morning Bird", "audio/mpeg", []byte("mp3-bytes"))
	if err != nil {
		t.Fatalf("AddCustomAlarm: %v", err)
	}
	if record.ID == "" || !strings.Contains(record.ID, "-") {
		t.Fatalf("unexpected id %q", record.ID)
	}
	if record.Name != "Morning Bird" || record.Size != int64(len("mp3-bytes")) {
		t.Fatalf("record = %+v", record)
	}

	stored, ok := svc.GetCustomAlarm(ctx, record.ID)
	if !ok {
		t.Fatal("stored alarm not found")
	}
	if !bytes.Equal(stored.Data, []byte("mp3-bytes")) {
		t.Fatalf("payload mismatch: %q", stored.Data)
	}
}

func TestAddCustomAlarmBlankNameDefaultsToID(t *testing.T) {
	svc := newTestService(t)

	record, err := svc.AddCustomAlarm(context.Background(), "   ", "audio/wav", []byte("wav"))
	if err != nil {
		t.Fatalf("AddCustomAlarm: %v", err)
	}
	if record.Name != record.ID {
		t.Fatalf("blank name should fall back to the id, got %q", record.Name)
	}
}

func TestAddCustomAlarmRejectsNonAudio(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddCustomAlarm(context.Background(), "doc", "application/pdf", []byte("%PDF"))
	if err == nil {
		t.Fatal("expected rejection of non-audio content type")
	}
	if !strings.Contains(err.Error(), "audio") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCanAddFilePerFileLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if v := svc.CanAddFile(ctx, MaxFileSize); !v.Allowed {
		t.Fatalf("file at the limit should pass: %+v", v)
	}
	if v := svc.CanAddFile(ctx, MaxFileSize+1); v.Allowed {
		t.Fatal("file over the limit should be rejected")
	}
}

func TestCanAddFileTotalLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Seed records whose Size fields nearly fill the quota; no real payload
	// is needed for the accounting.
	seed := []int64{20 << 20, 20 << 20, 9 << 20}
	for i, size := range seed {
		rec := models.CustomAlarmModel{
			ID:          newAlarmID() + "-" + strings.Repeat("x", i+1),
			Name:        "seed",
			ContentType: "audio/mpeg",
			Size:        size,
			UploadedAt:  time.Now(),
		}
		if err := svc.db.Create(&rec).Error; err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}

	if v := svc.CanAddFile(ctx, 1<<20); !v.Allowed {
		t.Fatalf("1 MiB should still fit: %+v", v)
	}
	if v := svc.CanAddFile(ctx, 2<<20); v.Allowed {
		t.Fatal("2 MiB should exceed the total cap")
	}

	if _, err := svc.AddCustomAlarm(ctx, "too big", "audio/mpeg", make([]byte, 2<<20)); err == nil {
		t.Fatal("AddCustomAlarm should enforce the total cap")
	}
}

func TestDeleteCustomAlarmIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.AddCustomAlarm(ctx, "gone soon", "audio/mpeg", []byte("x"))
	if err != nil {
		t.Fatalf("AddCustomAlarm: %v", err)
	}

	if err := svc.DeleteCustomAlarm(ctx, record.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.DeleteCustomAlarm(ctx, record.ID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if err := svc.DeleteCustomAlarm(ctx, "never-existed"); err != nil {
		t.Fatalf("deleting an absent id: %v", err)
	}

	if _, ok := svc.GetCustomAlarm(ctx, record.ID); ok {
		t.Fatal("record still present after delete")
	}
}

func TestGetAllCustomAlarmsOmitsPayload(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"one", "two"} {
		if _, err := svc.AddCustomAlarm(ctx, name, "audio/mpeg", []byte("payload")); err != nil {
			t.Fatalf("AddCustomAlarm(%s): %v", name, err)
		}
	}

	alarms := svc.GetAllCustomAlarms(ctx)
	if len(alarms) != 2 {
		t.Fatalf("expected 2 alarms, got %d", len(alarms))
	}
	for _, a := range alarms {
		if len(a.Data) != 0 {
			t.Fatalf("listing must not carry audio data, got %d bytes", len(a.Data))
		}
		if a.Size != int64(len("payload")) {
			t.Fatalf("size metadata missing: %+v", a)
		}
	}
}

func TestGetCustomAlarmURL(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if got := svc.GetCustomAlarmURL(ctx, "dangling"); got != "" {
		t.Fatalf("dangling id should resolve to empty, got %q", got)
	}

	record, err := svc.AddCustomAlarm(ctx, "real", "audio/mpeg", []byte("x"))
	if err != nil {
		t.Fatalf("AddCustomAlarm: %v", err)
	}
	want := "/api/v2/alarms/custom/" + record.ID + "/audio"
	if got := svc.GetCustomAlarmURL(ctx, record.ID); got != want {
		t.Fatalf("url = %q, want %q", got, want)
	}
}

func TestGetStorageInfo(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	info := svc.GetStorageInfo(ctx)
	if info.TotalUsed != 0 || info.AlarmsCount != 0 {
		t.Fatalf("empty store: %+v", info)
	}
	if info.MaxStorage != MaxTotalStorage || info.MaxFileSize != MaxFileSize {
		t.Fatalf("limits: %+v", info)
	}

	if _, err := svc.AddCustomAlarm(ctx, "a", "audio/mpeg", make([]byte, 1024)); err != nil {
		t.Fatalf("AddCustomAlarm: %v", err)
	}

	info = svc.GetStorageInfo(ctx)
	if info.TotalUsed != 1024 || info.AlarmsCount != 1 {
		t.Fatalf("after upload: %+v", info)
	}
	if info.PercentageUsed <= 0 {
		t.Fatalf("percentage should be positive: %+v", info)
	}
}
