package database

import (
	"path/filepath"
	"testing"

	"vidhub-go/internal/config"
	"vidhub-go/internal/model"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "nested", "test.db"),
	}

	if err := Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	if err := AutoMigrate(Get()); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	for _, m := range model.All() {
		if !Get().Migrator().HasTable(m) {
			t.Errorf("table for %T not created", m)
		}
	}

	// 复合主键：重复边插入失败
	edge := model.Subscription{SubscriberID: 1, ChannelID: 2}
	if err := Get().Create(&edge).Error; err != nil {
		t.Fatalf("create edge: %v", err)
	}
	if err := Get().Create(&model.Subscription{SubscriberID: 1, ChannelID: 2}).Error; err == nil {
		t.Error("duplicate edge should violate primary key")
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
