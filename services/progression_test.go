package services

import (
	"testing"
	"time"

	"kinetic-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPThresholds(t *testing.T) {
	// Level N to N+1 costs N*100 XP, so the cumulative thresholds are
	// 0, 100, 300, 600, ...
	assert.Equal(t, 0, xpThreshold(1))
	assert.Equal(t, 100, xpThreshold(2))
	assert.Equal(t, 300, xpThreshold(3))
	assert.Equal(t, 600, xpThreshold(4))
	assert.Equal(t, 100, xpForNextLevel(1))
	assert.Equal(t, 300, xpForNextLevel(3))
}

func TestApplyExperienceMultiLevel(t *testing.T) {
	char := &models.Character{Level: 1}
	gained := applyExperience(char, 350)
	assert.Equal(t, 3, char.Level, "350 XP crosses the 100 and 300 thresholds")
	assert.Equal(t, 2, gained)
	assert.Equal(t, 350, char.Experience)

	// The cap holds even for absurd grants.
	char = &models.Character{Level: 99, Experience: xpThreshold(99)}
	applyExperience(char, 1<<30)
	assert.Equal(t, models.MaxLevel, char.Level)
}

func TestConfirmTricksIdempotent(t *testing.T) {
	db := setupTestDB(t)
	progression := NewProgressionService(db)
	char := newTestCharacter(t, db, "user-1", "Tony")

	ids := trickIDs(t, db, "Ollie", "Kickflip") // 20+50 XP, 10+20 kinetics
	result, err := progression.ConfirmTricks(char.ID, ids, "trainer-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.NewTricks)
	assert.Equal(t, 70, result.ExperienceAward)
	assert.Equal(t, 30, result.KineticsAward)
	// 100 welcome + 30 trick kinetics + 25 for the "Apprentice" achievement.
	assert.Equal(t, 155, result.Character.Kinetics)
	assert.Equal(t, 1, result.Character.Level)

	// Re-confirming the same batch awards nothing.
	result, err = progression.ConfirmTricks(char.ID, ids, "trainer-1")
	require.NoError(t, err)
	assert.Zero(t, result.NewTricks)
	assert.Zero(t, result.ExperienceAward)
	assert.Equal(t, 155, result.Character.Kinetics)
	assert.Equal(t, 70, result.Character.Experience)

	// Unknown ids are skipped, not fatal.
	result, err = progression.ConfirmTricks(char.ID, []uint{9999}, "trainer-1")
	require.NoError(t, err)
	assert.Zero(t, result.NewTricks)
}

func TestConfirmTricksLevelsUpAndAwardsAchievements(t *testing.T) {
	db := setupTestDB(t)
	progression := NewProgressionService(db)
	char := newTestCharacter(t, db, "user-1", "Tony")

	// 360 Flip (100 XP) + Laser Flip (200 XP) = 300 XP: level 1 -> 3.
	ids := trickIDs(t, db, "360 Flip", "Laser Flip")
	result, err := progression.ConfirmTricks(char.ID, ids, "trainer-1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Character.Level)
	assert.Equal(t, 2, result.LevelsGained)

	// "Apprentice" (first trick) should be among the earned achievements.
	names := make([]string, 0, len(result.Achievements))
	for _, a := range result.Achievements {
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "Apprentice")

	// Its reward got credited through the ledger.
	var reward models.KineticsTransaction
	require.NoError(t, db.Where("character_id = ? AND source = ?", char.ID, models.SourceAchievement).
		First(&reward).Error)
	assert.Equal(t, 25, reward.Amount)
}

func TestGameComplete(t *testing.T) {
	db := setupTestDB(t)
	progression := NewProgressionService(db)
	char := newTestCharacter(t, db, "user-1", "Tony")

	result, err := progression.GameComplete(char.ID, GameCompleteInput{
		GameName:       "rail-runner",
		Score:          420,
		Won:            true,
		EarnedXP:       50,
		EarnedKinetics: 15,
		BalanceDelta:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Character.GamesPlayed)
	assert.Equal(t, 1, result.Character.GamesWon)
	assert.Equal(t, 50, result.Character.Experience)
	// 100 welcome + 15 game kinetics + 50 for "First Victory".
	assert.Equal(t, 165, result.Character.Kinetics)
	assert.Equal(t, 52, result.Character.Balance)

	// First win unlocks "First Victory".
	names := make([]string, 0, len(result.Achievements))
	for _, a := range result.Achievements {
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "First Victory")

	// A loss bumps only games_played.
	result, err = progression.GameComplete(char.ID, GameCompleteInput{GameName: "rail-runner", Won: false})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Character.GamesPlayed)
	assert.Equal(t, 1, result.Character.GamesWon)

	_, err = progression.GameComplete(char.ID, GameCompleteInput{EarnedXP: -5})
	reqErr, ok := IsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, "invalid_reward", reqErr.Code)
}

func TestAddTrainingVisit(t *testing.T) {
	db := setupTestDB(t)
	progression := NewProgressionService(db)
	char := newTestCharacter(t, db, "user-1", "Tony")

	visit, _, err := progression.AddTrainingVisit(char.ID, time.Time{}, "trainer-1", "worked on grinds")
	require.NoError(t, err)
	assert.Equal(t, "trainer-1", visit.ConfirmedBy)
	assert.False(t, visit.VisitDate.IsZero())

	visits, err := progression.TrainingVisits(char.ID, 10)
	require.NoError(t, err)
	assert.Len(t, visits, 1)

	_, _, err = progression.AddTrainingVisit(9999, time.Now(), "trainer-1", "")
	require.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestTricksForFiltersAndFlags(t *testing.T) {
	db := setupTestDB(t)
	progression := NewProgressionService(db)
	char := newTestCharacter(t, db, "user-1", "Tony")

	ids := trickIDs(t, db, "Ollie")
	_, err := progression.ConfirmTricks(char.ID, ids, "trainer-1")
	require.NoError(t, err)

	skateTricks, err := progression.TricksFor(char.ID, models.SportSkate)
	require.NoError(t, err)
	require.NotEmpty(t, skateTricks)
	for _, trick := range skateTricks {
		assert.Equal(t, models.SportSkate, trick.SportType)
		if trick.Name == "Ollie" {
			assert.True(t, trick.Mastered)
			assert.NotNil(t, trick.MasteredAt)
		}
	}

	mastered, err := progression.MasteredTricks(char.ID)
	require.NoError(t, err)
	require.Len(t, mastered, 1)
	assert.Equal(t, "Ollie", mastered[0].Name)
}
