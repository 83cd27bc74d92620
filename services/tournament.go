package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"kinetic-engine/models"
	"kinetic-engine/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TournamentService runs the weekly competitive cycle: one active window per
// Monday-Sunday week, paid entries, activity-driven scores and the rollover
// that seals a finished week.
type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

// Score components of a tournament entry.
const (
	scoreGames    = "games_score"
	scoreTricks   = "tricks_score"
	scoreTraining = "training_score"
)

// currentTournamentTx returns the window containing now, creating it on first
// touch. The unique index on week_start makes concurrent creation collapse to
// one row. A freshly created window is announced to every character.
func currentTournamentTx(tx *gorm.DB, now time.Time) (*models.Tournament, error) {
	monday, sunday := utils.WeekBounds(now)
	t := models.Tournament{
		WeekStart: monday,
		WeekEnd:   sunday,
		MonthKey:  utils.MonthKey(monday),
		Status:    models.TournamentActive,
		EntryFee:  models.TournamentEntryFee,
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&t)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		if err := announceTournamentTx(tx, &t); err != nil {
			return nil, err
		}
		return &t, nil
	}
	if err := tx.Where("week_start = ?", monday).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func announceTournamentTx(tx *gorm.DB, t *models.Tournament) error {
	var ids []uint
	if err := tx.Model(&models.Character{}).Pluck("id", &ids).Error; err != nil {
		return err
	}
	msg := fmt.Sprintf("A new weekly tournament is open until %s. Entry fee: %d kinetics.",
		t.WeekEnd.Format("Jan 2"), t.EntryFee)
	for _, id := range ids {
		if err := notifyTx(tx, id, "Tournament week started!", msg, models.NotifyTournament,
			map[string]any{"tournament_id": t.ID, "week_start": t.WeekStart}); err != nil {
			return err
		}
	}
	return nil
}

// Current returns the active window and its standings, creating the window if
// this is the first touch of the week.
func (s *TournamentService) Current(now time.Time) (*models.Tournament, []models.TournamentEntry, error) {
	var t *models.Tournament
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		t, err = currentTournamentTx(tx, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.standings(t.ID)
	return t, entries, err
}

func (s *TournamentService) standings(tournamentID uint) ([]models.TournamentEntry, error) {
	var entries []models.TournamentEntry
	err := s.DB.Where("tournament_id = ?", tournamentID).
		Order("score DESC, joined_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if err := s.fillEntryCharacters(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *TournamentService) fillEntryCharacters(entries []models.TournamentEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.CharacterID)
	}
	var chars []models.Character
	if err := s.DB.Where("id IN ?", ids).Find(&chars).Error; err != nil {
		return err
	}
	byID := make(map[uint]models.Character, len(chars))
	for _, c := range chars {
		byID[c.ID] = c
	}
	for i := range entries {
		if c, ok := byID[entries[i].CharacterID]; ok {
			entries[i].CharacterName = c.Name
			entries[i].AvatarURL = c.AvatarURL
			entries[i].SportType = c.SportType
			entries[i].Level = c.Level
		}
	}
	return nil
}

// Join enters the character into the current window for the entry fee. The
// entry row is inserted before the debit: a conflicting insert surfaces as
// already_joined and an insufficient balance rolls the entry back with the
// rest of the transaction, so the fee can never be charged twice.
func (s *TournamentService) Join(characterID uint, now time.Time) (*models.Tournament, *models.TournamentEntry, error) {
	var (
		t     *models.Tournament
		entry models.TournamentEntry
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		t, err = currentTournamentTx(tx, now)
		if err != nil {
			return err
		}
		entry = models.TournamentEntry{TournamentID: t.ID, CharacterID: characterID, JoinedAt: now.UTC()}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyJoined
		}
		desc := fmt.Sprintf("Tournament entry (week of %s)", t.WeekStart.Format("Jan 2"))
		if _, err := debitTx(tx, characterID, t.EntryFee, models.SourceTournament, desc, ""); err != nil {
			return err
		}
		return notifyTx(tx, characterID, "You're in!",
			fmt.Sprintf("Entry confirmed for the week of %s. Good luck!", t.WeekStart.Format("Jan 2")),
			models.NotifyTournament, map[string]any{"tournament_id": t.ID})
	})
	if err != nil {
		return nil, nil, err
	}
	return t, &entry, nil
}

// bumpTournamentScoreTx adds points to one score component of the character's
// entry in the active window containing at. Characters who have not joined,
// or activity outside any active window, score nothing.
func bumpTournamentScoreTx(tx *gorm.DB, characterID uint, component string, points int, at time.Time) error {
	monday, _ := utils.WeekBounds(at)
	var t models.Tournament
	err := tx.Where("status = ? AND week_start = ?", models.TournamentActive, monday).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	res := tx.Model(&models.TournamentEntry{}).
		Where("tournament_id = ? AND character_id = ?", t.ID, characterID).
		Updates(map[string]any{
			component: gorm.Expr(component+" + ?", points),
			"score":   gorm.Expr("score + ?", points),
		})
	return res.Error
}

// RecalcScores rebuilds every entry of a tournament from the raw activity in
// its window. The incremental bumps keep standings live; this derivation is
// the authoritative one, run before sealing a week. Ranks are assigned by
// score descending with earlier joiners winning ties.
func (s *TournamentService) RecalcScores(tournamentID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var t models.Tournament
		if err := tx.First(&t, tournamentID).Error; err != nil {
			return err
		}
		var entries []models.TournamentEntry
		if err := tx.Where("tournament_id = ?", t.ID).Find(&entries).Error; err != nil {
			return err
		}
		windowEnd := t.WeekEnd.AddDate(0, 0, 1)

		for i := range entries {
			e := &entries[i]
			var games, tricks, visits int64
			if err := tx.Model(&models.GameResult{}).
				Where("character_id = ? AND created_at >= ? AND created_at < ?", e.CharacterID, t.WeekStart, windowEnd).
				Count(&games).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.CharacterTrick{}).
				Where("character_id = ? AND confirmed_at >= ? AND confirmed_at < ?", e.CharacterID, t.WeekStart, windowEnd).
				Count(&tricks).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.TrainingVisit{}).
				Where("character_id = ? AND visit_date >= ? AND visit_date < ?", e.CharacterID, t.WeekStart, windowEnd).
				Count(&visits).Error; err != nil {
				return err
			}
			e.GamesScore = int(games) * models.GameScorePoints
			e.TricksScore = int(tricks) * models.TrickScorePoints
			e.TrainingScore = int(visits) * models.TrainingScorePoints
			e.Score = e.GamesScore + e.TricksScore + e.TrainingScore
		}

		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Score != entries[j].Score {
				return entries[i].Score > entries[j].Score
			}
			return entries[i].JoinedAt.Before(entries[j].JoinedAt)
		})
		for i := range entries {
			e := &entries[i]
			e.Rank = i + 1
			if err := tx.Model(&models.TournamentEntry{}).Where("id = ?", e.ID).Updates(map[string]any{
				"games_score":    e.GamesScore,
				"tricks_score":   e.TricksScore,
				"training_score": e.TrainingScore,
				"score":          e.Score,
				"rank":           e.Rank,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Rollover seals every active window that has ended: final scores are
// recomputed, the status flips to completed exactly once, entrants get their
// results, and the new week's window is opened. Safe to run repeatedly; the
// guarded status UPDATE makes concurrent rollovers a no-op.
func (s *TournamentService) Rollover(now time.Time) error {
	monday, _ := utils.WeekBounds(now)
	var ended []models.Tournament
	err := s.DB.Where("status = ? AND week_start < ?", models.TournamentActive, monday).
		Find(&ended).Error
	if err != nil {
		return err
	}
	for _, t := range ended {
		if err := s.RecalcScores(t.ID); err != nil {
			return err
		}
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Tournament{}).
				Where("id = ? AND status = ?", t.ID, models.TournamentActive).
				Update("status", models.TournamentCompleted)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil // another rollover sealed it first
			}
			return s.notifyResultsTx(tx, t.ID)
		})
		if err != nil {
			return err
		}

		// Freeze the sealed week's boards on the authoritative final scores;
		// the periodic tick only ever recomputes the current period.
		boards := NewLeaderboardService(s.DB)
		if err := boards.RecomputeWeekly(t.WeekStart); err != nil {
			return err
		}
		if err := boards.RecomputeMonthly(t.WeekStart); err != nil {
			return err
		}
		log.Printf("[tournament] sealed week of %s", t.WeekStart.Format("2006-01-02"))
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := currentTournamentTx(tx, now)
		return err
	})
}

func (s *TournamentService) notifyResultsTx(tx *gorm.DB, tournamentID uint) error {
	var t models.Tournament
	if err := tx.First(&t, tournamentID).Error; err != nil {
		return err
	}
	var entries []models.TournamentEntry
	if err := tx.Where("tournament_id = ?", t.ID).Order("rank ASC").Find(&entries).Error; err != nil {
		return err
	}
	week := t.WeekStart.Format("Jan 2")
	for _, e := range entries {
		msg := fmt.Sprintf("Week of %s: you finished #%d with %d points.", week, e.Rank, e.Score)
		if err := notifyTx(tx, e.CharacterID, "Tournament results", msg, models.NotifyWeeklyResults,
			map[string]any{"tournament_id": t.ID, "rank": e.Rank, "score": e.Score}); err != nil {
			return err
		}
	}
	return nil
}

// SendWeeklyResults re-sends result notifications for the most recent
// completed window. Used by trainers after a manual recount.
func (s *TournamentService) SendWeeklyResults() (*models.Tournament, error) {
	var t models.Tournament
	err := s.DB.Where("status = ?", models.TournamentCompleted).
		Order("week_start DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &RequestError{Status: 404, Code: "no_completed_tournament", Message: "no completed tournament yet"}
	}
	if err != nil {
		return nil, err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.notifyResultsTx(tx, t.ID)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// History returns the character's past entries, newest week first.
func (s *TournamentService) History(characterID uint, limit int) ([]models.TournamentEntry, []models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var entries []models.TournamentEntry
	err := s.DB.Where("character_id = ?", characterID).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.TournamentID)
	}
	var tournaments []models.Tournament
	if len(ids) > 0 {
		if err := s.DB.Where("id IN ?", ids).Order("week_start DESC").Find(&tournaments).Error; err != nil {
			return nil, nil, err
		}
	}
	return entries, tournaments, nil
}
