package database

import (
	"fmt"

	sqlite "github.com/glebarez/sqlite"
	"github.com/iux-juridico/invitaciones/backend/internal/events"
	"github.com/iux-juridico/invitaciones/backend/internal/guests"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenSQLite establishes the SQLite connection backing the relational
// side (events and the guest roster) and performs schema migrations.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&events.Event{}, &guests.Guest{}); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}
