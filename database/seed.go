package database

import (
	"context"

	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

// DefaultTables is the floor plan inserted into an empty tables collection.
func DefaultTables() []models.Table {
	layout := []struct {
		number, capacity, x, y int
	}{
		// 2 seaters
		{1, 2, 50, 50}, {2, 2, 200, 50}, {3, 2, 350, 50}, {4, 2, 500, 50},
		// 3 seaters
		{5, 3, 50, 150}, {6, 3, 200, 150}, {7, 3, 350, 150}, {8, 3, 500, 150},
		// 4 seaters
		{9, 4, 50, 250}, {10, 4, 200, 250}, {11, 4, 350, 250}, {12, 4, 500, 250}, {13, 4, 275, 350},
		// 5 seaters
		{14, 5, 50, 450}, {15, 5, 200, 450}, {16, 5, 350, 450}, {17, 5, 500, 450}, {18, 5, 125, 550},
		// 6 seaters
		{19, 6, 275, 550}, {20, 6, 425, 550},
	}

	tables := make([]models.Table, 0, len(layout))
	for _, l := range layout {
		tables = append(tables, models.Table{
			TableNumber: l.number,
			Capacity:    l.capacity,
			Status:      models.TableAvailable,
			Position:    models.Position{X: l.x, Y: l.y},
		})
	}
	return tables
}

// SeedTables inserts DefaultTables when no table exists yet. It returns the
// number of rows inserted.
func SeedTables(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Table{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	tables := DefaultTables()
	if err := db.WithContext(ctx).Create(&tables).Error; err != nil {
		return 0, err
	}

	utils.InfoLogger.Printf("Default tables initialized (%d)", len(tables))
	return len(tables), nil
}
