// Package db keeps the transition audit trail in a local sqlite database.
// Every workflow transition appends one row; writes are best effort and a
// failure here never blocks the user-facing action.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	instance *gorm.DB
	once     sync.Once
	initErr  error
)

// Init opens (or creates) the audit database. With an empty path it defaults
// to ~/.slack-review-bot/app.db.
func Init(path string) (*gorm.DB, error) {
	once.Do(func() {
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				initErr = err
				return
			}
			path = filepath.Join(home, ".slack-review-bot", "app.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			initErr = err
			return
		}

		instance, initErr = gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if initErr != nil {
			return
		}
		if err := instance.AutoMigrate(&Transition{}); err != nil {
			initErr = err
			return
		}
	})
	return instance, initErr
}

func Get() *gorm.DB {
	return instance
}

// InitWithDB allows injecting a pre-configured *gorm.DB (useful for testing).
func InitWithDB(d *gorm.DB) {
	instance = d
}

// Trail records workflow transitions.
type Trail struct{}

func NewTrail() *Trail {
	return &Trail{}
}

// Record appends one transition row.
func (*Trail) Record(ctx context.Context, t *Transition) error {
	database := Get()
	if database == nil {
		return fmt.Errorf("database not initialized")
	}
	if err := database.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

// History returns the recorded transitions for an asset code, newest first.
func History(assetCode string) ([]Transition, error) {
	database := Get()
	if database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	var transitions []Transition
	if err := database.Where("asset_code = ?", assetCode).Order("created_at DESC").Find(&transitions).Error; err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	return transitions, nil
}
