package db

import (
	"testing"

	"padoca/internal/config"
	"padoca/models"
)

func TestInitializeRejectsEmptyURL(t *testing.T) {
	if _, err := Initialize(config.DatabaseConfig{URL: "   "}); err == nil {
		t.Fatalf("expected error for empty database URL")
	}
}

func TestConfigureMigratesSchema(t *testing.T) {
	database, err := Configure(config.DatabaseConfig{URL: "file::memory:?cache=shared"})
	if err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	t.Cleanup(func() {
		DB = nil
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if Get() != database {
		t.Fatalf("expected Get to return the configured handle")
	}

	for _, model := range []any{
		&models.Product{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Order{},
		&models.OrderItem{},
		&models.HistoryEntry{},
		&models.User{},
	} {
		if !database.Migrator().HasTable(model) {
			t.Errorf("expected table for %T", model)
		}
	}
}

func TestInitializeAppliesPoolSettings(t *testing.T) {
	database, err := Initialize(config.DatabaseConfig{
		URL:          "file::memory:?cache=shared",
		MaxOpenConns: 3,
	})
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if got := sqlDB.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("expected 3 max open connections, got %d", got)
	}
}
