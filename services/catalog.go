package services

import (
	"log"

	"kinetic-engine/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedCatalog loads the built-in tricks, achievements and accessories.
// Idempotent: existing rows (matched by their unique name indexes) are left
// untouched, so reruns on a populated database write nothing.
func SeedCatalog(db *gorm.DB) error {
	tricks := make([]models.Trick, len(models.SeedTricks))
	copy(tricks, models.SeedTricks)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tricks).Error; err != nil {
		return err
	}
	achievements := make([]models.Achievement, len(models.SeedAchievements))
	copy(achievements, models.SeedAchievements)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&achievements).Error; err != nil {
		return err
	}
	accessories := make([]models.Accessory, len(models.SeedAccessories))
	copy(accessories, models.SeedAccessories)
	for i := range accessories {
		accessories[i].IsAvailable = true
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&accessories).Error; err != nil {
		return err
	}
	log.Printf("[catalog] seeded %d tricks, %d achievements, %d accessories",
		len(tricks), len(achievements), len(accessories))
	return nil
}
