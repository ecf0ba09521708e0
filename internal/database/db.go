package database

import (
	"log/slog"

	"go-zettelkasten/internal/config"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Initialize opens the postgres connection. TranslateError is on so
// uniqueness violations surface as gorm.ErrDuplicatedKey regardless of
// driver; the tree engine relies on that for its retry logic.
func Initialize(cfg *config.Config, logger *slog.Logger) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         slogGorm.New(slogGorm.WithHandler(logger.Handler())),
		TranslateError: true,
	})
	if err != nil {
		return err
	}
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
