// Package db contains things related to the relational database
package db

import (
	"errors"
	"fmt"
	"os"

	"hrportal/onboarding-api/config"
	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/pkg/util"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(c config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch c.Type {
	case "postgres":
		dialector = postgres.Open(c.DSN)
	case "sqlite", "":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() {
			if _, err := os.Stat(c.Path); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", c.Path)
			}
		}

		// Foreign keys are off by default in SQLite
		dialector = sqlite.Open(c.Path + "?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("unsupported database type %q", c.Type)
	}

	db, err := Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", c.Type, err)
	}

	return db, nil
}

// Open connects through dialector and migrates the schema. Tests use it with a
// throwaway SQLite file.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(model.User{}, model.VerificationCode{}); err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
