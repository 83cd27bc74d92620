package services

import (
	"testing"
	"time"

	"kinetic-engine/models"
	"kinetic-engine/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedWindow inserts a tournament with entries at fixed scores, bypassing the
// join flow so tests control every number.
func seedWindow(t *testing.T, db *gorm.DB, weekStart time.Time, scores map[uint]int, joinOrder []uint) *models.Tournament {
	t.Helper()
	monday, sunday := utils.WeekBounds(weekStart)
	tournament := models.Tournament{
		WeekStart: monday,
		WeekEnd:   sunday,
		MonthKey:  utils.MonthKey(monday),
		Status:    models.TournamentActive,
		EntryFee:  models.TournamentEntryFee,
	}
	require.NoError(t, db.Create(&tournament).Error)
	for i, characterID := range joinOrder {
		entry := models.TournamentEntry{
			TournamentID: tournament.ID,
			CharacterID:  characterID,
			TricksScore:  scores[characterID],
			Score:        scores[characterID],
			JoinedAt:     monday.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.Create(&entry).Error)
	}
	return &tournament
}

func TestRecomputeWeeklyDenseRanks(t *testing.T) {
	db := setupTestDB(t)
	boards := NewLeaderboardService(db)
	a := newTestCharacter(t, db, "user-a", "Anna")
	b := newTestCharacter(t, db, "user-b", "Ben")
	c := newTestCharacter(t, db, "user-c", "Cleo")

	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	seedWindow(t, db, now, map[uint]int{a.ID: 100, b.ID: 100, c.ID: 50}, []uint{b.ID, a.ID, c.ID})

	require.NoError(t, boards.RecomputeWeekly(now))
	rows, err := boards.Leaderboard(models.PeriodWeekly, now, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Tied scores share rank 1, the next score gets rank 2 with no gap.
	// Ben joined before Anna, so he is listed first among the tied pair.
	assert.Equal(t, b.ID, rows[0].CharacterID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, a.ID, rows[1].CharacterID)
	assert.Equal(t, 1, rows[1].Rank)
	assert.Equal(t, c.ID, rows[2].CharacterID)
	assert.Equal(t, 2, rows[2].Rank)
	assert.Equal(t, "Ben", rows[0].CharacterName)
}

func TestRecomputeWeeklyIsDeterministic(t *testing.T) {
	db := setupTestDB(t)
	boards := NewLeaderboardService(db)
	a := newTestCharacter(t, db, "user-a", "Anna")
	b := newTestCharacter(t, db, "user-b", "Ben")

	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	seedWindow(t, db, now, map[uint]int{a.ID: 30, b.ID: 80}, []uint{a.ID, b.ID})

	require.NoError(t, boards.RecomputeWeekly(now))
	first, err := boards.Leaderboard(models.PeriodWeekly, now, 10)
	require.NoError(t, err)

	// Recompute replaces the period wholesale and lands on the same board.
	require.NoError(t, boards.RecomputeWeekly(now))
	second, err := boards.Leaderboard(models.PeriodWeekly, now, 10)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].CharacterID, second[i].CharacterID)
		assert.Equal(t, first[i].Rank, second[i].Rank)
		assert.Equal(t, first[i].Score, second[i].Score)
	}

	var count int64
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).
		Where("period_type = ?", models.PeriodWeekly).Count(&count).Error)
	assert.Equal(t, int64(2), count, "no duplicate rows after recompute")
}

func TestRecomputeMonthlySumsAcrossWeeks(t *testing.T) {
	db := setupTestDB(t)
	boards := NewLeaderboardService(db)
	a := newTestCharacter(t, db, "user-a", "Anna")
	b := newTestCharacter(t, db, "user-b", "Ben")

	// Two windows of July 2026: Anna plays both weeks, Ben only the second.
	week1 := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	week2 := time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC)
	seedWindow(t, db, week1, map[uint]int{a.ID: 60}, []uint{a.ID})
	seedWindow(t, db, week2, map[uint]int{a.ID: 40, b.ID: 90}, []uint{a.ID, b.ID})

	now := time.Date(2026, 7, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, boards.RecomputeMonthly(now))
	rows, err := boards.Leaderboard(models.PeriodMonthly, now, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, a.ID, rows[0].CharacterID)
	assert.Equal(t, 100, rows[0].Score, "60 + 40 across the month")
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, b.ID, rows[1].CharacterID)
	assert.Equal(t, 90, rows[1].Score)
	assert.Equal(t, 2, rows[1].Rank)
}

func TestLeaderboardRejectsUnknownPeriod(t *testing.T) {
	db := setupTestDB(t)
	boards := NewLeaderboardService(db)

	_, err := boards.Leaderboard("yearly", time.Now().UTC(), 10)
	reqErr, ok := IsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, "invalid_period", reqErr.Code)
}

func TestLeaderboardEmptyPeriod(t *testing.T) {
	db := setupTestDB(t)
	boards := NewLeaderboardService(db)

	rows, err := boards.Leaderboard(models.PeriodWeekly, time.Now().UTC(), 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
