package services

import (
	"testing"

	"kinetic-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAchievementAwardedExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	char := newTestCharacter(t, db, "user-1", "Tony")

	// Cross the games_won=1 threshold twice.
	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := recordProgressTx(tx, char.ID, models.RequirementGamesWon, 1, false)
			return err
		})
		require.NoError(t, err)
	}

	var rewards int64
	require.NoError(t, db.Model(&models.KineticsTransaction{}).
		Where("character_id = ? AND source = ?", char.ID, models.SourceAchievement).
		Count(&rewards).Error)
	assert.Equal(t, int64(1), rewards, "threshold reward paid once")

	var fresh models.Character
	require.NoError(t, db.First(&fresh, char.ID).Error)
	assert.Equal(t, models.StartingKinetics+50, fresh.Kinetics)
}

func TestAchievementProgressIsMonotonic(t *testing.T) {
	db := setupTestDB(t)
	char := newTestCharacter(t, db, "user-1", "Tony")

	var trickster models.Achievement
	require.NoError(t, db.Where("name = ?", "Trickster").First(&trickster).Error) // 5 tricks

	// Absolute progress of 3, then a stale absolute 2: progress stays at 3.
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := recordProgressTx(tx, char.ID, models.RequirementTricksCount, 3, true)
		return err
	})
	require.NoError(t, err)
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := recordProgressTx(tx, char.ID, models.RequirementTricksCount, 2, true)
		return err
	})
	require.NoError(t, err)

	var row models.CharacterAchievement
	require.NoError(t, db.Where("character_id = ? AND achievement_id = ?", char.ID, trickster.ID).
		First(&row).Error)
	assert.Equal(t, 3, row.Progress)
	assert.Nil(t, row.EarnedAt)
}

func TestAchievementProgressCappedAtRequirement(t *testing.T) {
	db := setupTestDB(t)
	char := newTestCharacter(t, db, "user-1", "Tony")

	var apprentice models.Achievement
	require.NoError(t, db.Where("name = ?", "Apprentice").First(&apprentice).Error) // 1 trick

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := recordProgressTx(tx, char.ID, models.RequirementTricksCount, 12, true)
		return err
	})
	require.NoError(t, err)

	var row models.CharacterAchievement
	require.NoError(t, db.Where("character_id = ? AND achievement_id = ?", char.ID, apprentice.ID).
		First(&row).Error)
	assert.Equal(t, 1, row.Progress)
	assert.NotNil(t, row.EarnedAt)
}

func TestAchievementsForMergesProgress(t *testing.T) {
	db := setupTestDB(t)
	achievements := NewAchievementService(db)
	char := newTestCharacter(t, db, "user-1", "Tony")

	status, err := achievements.AchievementsFor(char.ID)
	require.NoError(t, err)
	assert.Len(t, status, len(models.SeedAchievements))

	earnedCount := 0
	for _, s := range status {
		if s.Earned {
			earnedCount++
			assert.NotNil(t, s.EarnedAt)
		}
	}
	assert.Equal(t, 1, earnedCount, "only the creation achievement is earned at birth")
}
