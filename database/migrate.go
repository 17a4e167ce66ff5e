package database

import (
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema. The unique index on reservation_claims
// (slot_date, slot_time, table_number) is what rejects a double booking at insert time.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Table{},
		&models.Reservation{},
		&models.ReservationClaim{},
	)
	if err != nil {
		return err
	}

	if !db.Migrator().HasIndex(&models.ReservationClaim{}, "idx_claim_slot_table") {
		if err := db.Migrator().CreateIndex(&models.ReservationClaim{}, "idx_claim_slot_table"); err != nil {
			return err
		}
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
