package services

import (
	"errors"
	"sort"
	"time"

	"kinetic-engine/models"
	"kinetic-engine/utils"

	"gorm.io/gorm"
)

// LeaderboardService derives the weekly and monthly boards from tournament
// entries. Boards are replaced wholesale on every recompute so a read never
// sees a half-updated period.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// RecomputeWeekly rebuilds the weekly board for the window containing now
// from that week's tournament entries.
func (s *LeaderboardService) RecomputeWeekly(now time.Time) error {
	monday, _ := utils.WeekBounds(now)
	var t models.Tournament
	err := s.DB.Where("week_start = ?", monday).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // no window yet, nothing to rank
	}
	if err != nil {
		return err
	}
	var entries []models.TournamentEntry
	if err := s.DB.Where("tournament_id = ?", t.ID).Find(&entries).Error; err != nil {
		return err
	}

	rows := make([]models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.LeaderboardEntry{
			PeriodType:    models.PeriodWeekly,
			PeriodKey:     utils.WeekKey(monday),
			CharacterID:   e.CharacterID,
			Score:         e.Score,
			GamesScore:    e.GamesScore,
			TricksScore:   e.TricksScore,
			TrainingScore: e.TrainingScore,
		})
	}
	sortAndRank(rows, entryJoinTimes(entries))
	return s.replacePeriod(models.PeriodWeekly, utils.WeekKey(monday), rows)
}

// RecomputeMonthly rebuilds the monthly board for the month containing now by
// summing each character's scores across every tournament window keyed to
// that month.
func (s *LeaderboardService) RecomputeMonthly(now time.Time) error {
	monthKey := utils.MonthKey(now)
	var tournaments []models.Tournament
	if err := s.DB.Where("month_key = ?", monthKey).Find(&tournaments).Error; err != nil {
		return err
	}
	if len(tournaments) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(tournaments))
	for _, t := range tournaments {
		ids = append(ids, t.ID)
	}
	var entries []models.TournamentEntry
	if err := s.DB.Where("tournament_id IN ?", ids).Find(&entries).Error; err != nil {
		return err
	}

	byCharacter := map[uint]*models.LeaderboardEntry{}
	firstJoin := map[uint]time.Time{}
	for _, e := range entries {
		row, ok := byCharacter[e.CharacterID]
		if !ok {
			row = &models.LeaderboardEntry{
				PeriodType:  models.PeriodMonthly,
				PeriodKey:   monthKey,
				CharacterID: e.CharacterID,
			}
			byCharacter[e.CharacterID] = row
			firstJoin[e.CharacterID] = e.JoinedAt
		}
		row.Score += e.Score
		row.GamesScore += e.GamesScore
		row.TricksScore += e.TricksScore
		row.TrainingScore += e.TrainingScore
		if e.JoinedAt.Before(firstJoin[e.CharacterID]) {
			firstJoin[e.CharacterID] = e.JoinedAt
		}
	}
	rows := make([]models.LeaderboardEntry, 0, len(byCharacter))
	for _, row := range byCharacter {
		rows = append(rows, *row)
	}
	sortAndRank(rows, firstJoin)
	return s.replacePeriod(models.PeriodMonthly, monthKey, rows)
}

func entryJoinTimes(entries []models.TournamentEntry) map[uint]time.Time {
	joined := make(map[uint]time.Time, len(entries))
	for _, e := range entries {
		joined[e.CharacterID] = e.JoinedAt
	}
	return joined
}

// sortAndRank orders rows by score descending (earlier joiners first on ties)
// and assigns dense ranks: tied scores share a rank and the next distinct
// score gets rank+1, with no gaps.
func sortAndRank(rows []models.LeaderboardEntry, joined map[uint]time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return joined[rows[i].CharacterID].Before(joined[rows[j].CharacterID])
	})
	rank := 0
	prevScore := -1
	for i := range rows {
		if i == 0 || rows[i].Score != prevScore {
			rank++
			prevScore = rows[i].Score
		}
		rows[i].Rank = rank
	}
}

func (s *LeaderboardService) replacePeriod(periodType, periodKey string, rows []models.LeaderboardEntry) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("period_type = ? AND period_key = ?", periodType, periodKey).
			Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// Leaderboard reads the stored board for the period containing now.
func (s *LeaderboardService) Leaderboard(periodType string, now time.Time, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var periodKey string
	switch periodType {
	case models.PeriodWeekly:
		monday, _ := utils.WeekBounds(now)
		periodKey = utils.WeekKey(monday)
	case models.PeriodMonthly:
		periodKey = utils.MonthKey(now)
	default:
		return nil, &RequestError{Status: 400, Code: "invalid_period", Message: "period must be weekly or monthly"}
	}

	var rows []models.LeaderboardEntry
	err := s.DB.Where("period_type = ? AND period_key = ?", periodType, periodKey).
		Order("rank ASC, score DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if err := s.fillCharacters(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *LeaderboardService) fillCharacters(rows []models.LeaderboardEntry) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CharacterID)
	}
	var chars []models.Character
	if err := s.DB.Where("id IN ?", ids).Find(&chars).Error; err != nil {
		return err
	}
	byID := make(map[uint]models.Character, len(chars))
	for _, c := range chars {
		byID[c.ID] = c
	}
	for i := range rows {
		if c, ok := byID[rows[i].CharacterID]; ok {
			rows[i].CharacterName = c.Name
			rows[i].AvatarURL = c.AvatarURL
			rows[i].SportType = c.SportType
			rows[i].Level = c.Level
		}
	}
	return nil
}
