// Package db opens the database connection. Production runs against the
// Supabase Postgres instance, SQLite is used locally and in tests.
package db

import (
	"bitwise74/leads-api/model"
	"bitwise74/leads-api/util"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the database configured under database.*
func New() (*gorm.DB, error) {
	driver := viper.GetString("database.driver")
	dsn := viper.GetString("database.dsn")

	// If running in a docker container don't allow the sqlite file to be created.
	// The host should instead mount it using volumes
	if driver == "sqlite" && util.IsRunningInDocker() {
		if _, err := os.Stat(dsn); err != nil {
			return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%v", dsn)
		}
	}

	return Open(driver, dsn)
}

// Open connects using the given driver and runs the migrations
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %v database, %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite only has one writer, more connections just end up in "database is locked"
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB, %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(model.ResourceRequest{}, model.ResourceCounter{}, model.RateCounter{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
