package migrations

import (
	"go-zettelkasten/internal/database"
	"go-zettelkasten/internal/models"
)

func Migrate() error {
	db := database.GetDB()

	// Auto migrate tables
	return db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.Zettel{},
		&models.File{},
		&models.Tag{},
	)
}
