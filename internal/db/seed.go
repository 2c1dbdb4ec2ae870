package db

import (
	"errors"

	"gorm.io/gorm"

	"github.com/VictorEyeEagle/cadweb/internal/models"
)

// Seed inserts baseline categories for a fresh install. Safe to run more than
// once; existing rows are left alone.
func Seed(db *gorm.DB) {
	baseCategories := []models.Category{
		{Name: "Bebidas", SortOrder: 1},
		{Name: "Alimentos", SortOrder: 2},
		{Name: "Limpeza", SortOrder: 3},
		{Name: "Outros", SortOrder: 99},
	}
	for _, c := range baseCategories {
		var existing models.Category
		err := db.Where("name = ?", c.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			db.Create(&c)
		}
	}
}
