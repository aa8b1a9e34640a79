package database

import "collabnexus/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Milestone{},
		&models.Review{},
	}
}
