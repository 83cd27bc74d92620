package services

import (
	"fmt"
	"testing"

	"kinetic-engine/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database with the full schema and the
// seeded catalog. Each call gets its own database, so tests stay isolated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Character{},
		&models.KineticsTransaction{},
		&models.Trick{},
		&models.CharacterTrick{},
		&models.Achievement{},
		&models.CharacterAchievement{},
		&models.Accessory{},
		&models.CharacterAccessory{},
		&models.PurchasedItem{},
		&models.Tournament{},
		&models.TournamentEntry{},
		&models.LeaderboardEntry{},
		&models.TrainingVisit{},
		&models.GameResult{},
		&models.CharacterNotification{},
	))
	require.NoError(t, SeedCatalog(db))
	return db
}

// newTestCharacter creates a character through the real creation flow, so it
// arrives with the welcome bonus already in the ledger.
func newTestCharacter(t *testing.T, db *gorm.DB, userID, name string) *models.Character {
	t.Helper()
	char, err := NewCharacterService(db).Create(CreateCharacterInput{
		UserID:    userID,
		Name:      name,
		SportType: models.SportSkate,
	})
	require.NoError(t, err)
	return char
}

// ledgerSum returns the sum of all ledger rows for a character.
func ledgerSum(t *testing.T, db *gorm.DB, characterID uint) int {
	t.Helper()
	var total int64
	err := db.Model(&models.KineticsTransaction{}).
		Where("character_id = ?", characterID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	require.NoError(t, err)
	return int(total)
}

// trickIDs looks up catalog tricks by name for test setups.
func trickIDs(t *testing.T, db *gorm.DB, names ...string) []uint {
	t.Helper()
	var ids []uint
	for _, name := range names {
		var trick models.Trick
		require.NoError(t, db.Where("name = ?", name).First(&trick).Error)
		ids = append(ids, trick.ID)
	}
	return ids
}
