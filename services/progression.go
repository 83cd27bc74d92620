package services

import (
	"fmt"
	"time"

	"kinetic-engine/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressionService handles everything that earns experience: confirmed
// tricks, mini-game results and training visits.
type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// xpForNextLevel is the experience needed to go from level to level+1.
func xpForNextLevel(level int) int {
	return level * 100
}

// xpThreshold is the total experience required to hold a level.
func xpThreshold(level int) int {
	return 50 * level * (level - 1)
}

// applyExperience adds xp to the character and resolves any level-ups, capped
// at MaxLevel. A single grant can cross several levels. Returns the number of
// levels gained. The caller persists the character.
func applyExperience(char *models.Character, xp int) int {
	char.Experience += xp
	gained := 0
	for char.Level < models.MaxLevel && char.Experience >= xpThreshold(char.Level+1) {
		char.Level++
		gained++
	}
	return gained
}

// ConfirmTricksResult summarizes one confirmation batch.
type ConfirmTricksResult struct {
	Character       *models.Character    `json:"character"`
	NewTricks       int                  `json:"new_tricks"`
	ExperienceAward int                  `json:"experience_awarded"`
	KineticsAward   int                  `json:"kinetics_awarded"`
	LevelsGained    int                  `json:"levels_gained"`
	Achievements    []models.Achievement `json:"achievements_earned,omitempty"`
}

// ConfirmTricks marks the given tricks mastered. Already-mastered and unknown
// trick ids are skipped silently, so re-sending a batch is safe: only tricks
// inserted right now pay out experience and kinetics. New masteries inside an
// active tournament window also feed the entrant's tricks score.
func (s *ProgressionService) ConfirmTricks(characterID uint, trickIDs []uint, confirmedBy string) (*ConfirmTricksResult, error) {
	result := &ConfirmTricksResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var char models.Character
		if err := tx.First(&char, characterID).Error; err != nil {
			return ErrCharacterNotFound
		}

		totalXP, totalKinetics := 0, 0
		for _, trickID := range trickIDs {
			var trick models.Trick
			if err := tx.First(&trick, trickID).Error; err != nil {
				continue // unknown id, skip
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.CharacterTrick{CharacterID: characterID, TrickID: trickID, ConfirmedBy: confirmedBy})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue // already mastered
			}
			result.NewTricks++
			totalXP += trick.ExperienceReward
			totalKinetics += trick.KineticsReward
			if err := bumpTournamentScoreTx(tx, characterID, scoreTricks, models.TrickScorePoints, time.Now().UTC()); err != nil {
				return err
			}
		}
		if result.NewTricks == 0 {
			result.Character = &char
			return nil
		}

		result.ExperienceAward = totalXP
		result.KineticsAward = totalKinetics
		result.LevelsGained = applyExperience(&char, totalXP)
		if err := tx.Model(&models.Character{}).Where("id = ?", char.ID).
			Updates(map[string]any{"experience": char.Experience, "level": char.Level}).Error; err != nil {
			return err
		}
		if totalKinetics > 0 {
			desc := fmt.Sprintf("Confirmed %d trick(s)", result.NewTricks)
			if _, err := creditTx(tx, char.ID, totalKinetics, models.SourceTricks, desc, confirmedBy); err != nil {
				return err
			}
		}
		if err := notifyTx(tx, char.ID, "Tricks confirmed!",
			fmt.Sprintf("You mastered %d new trick(s): +%d XP, +%d kinetics", result.NewTricks, totalXP, totalKinetics),
			models.NotifyTricks, nil); err != nil {
			return err
		}

		var mastered int64
		if err := tx.Model(&models.CharacterTrick{}).Where("character_id = ?", char.ID).Count(&mastered).Error; err != nil {
			return err
		}
		earned, err := recordProgressTx(tx, char.ID, models.RequirementTricksCount, int(mastered), true)
		if err != nil {
			return err
		}
		result.Achievements = append(result.Achievements, earned...)
		if result.LevelsGained > 0 {
			earned, err = recordProgressTx(tx, char.ID, models.RequirementLevel, char.Level, true)
			if err != nil {
				return err
			}
			result.Achievements = append(result.Achievements, earned...)
		}
		result.Character = &char
		return tx.First(result.Character, char.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GameCompleteInput is the payload of one finished mini-game session.
type GameCompleteInput struct {
	GameName       string `json:"game_name"`
	Score          int    `json:"score"`
	Won            bool   `json:"won"`
	EarnedXP       int    `json:"earned_xp"`
	EarnedKinetics int    `json:"earned_kinetics"`

	// Optional trainable-stat outcomes, clamped to 0-100 after applying.
	BalanceDelta int `json:"balance_delta"`
	SpeedDelta   int `json:"speed_delta"`
	CourageDelta int `json:"courage_delta"`
}

type GameCompleteResult struct {
	Character    *models.Character    `json:"character"`
	LevelsGained int                  `json:"levels_gained"`
	Achievements []models.Achievement `json:"achievements_earned,omitempty"`
}

// GameComplete records the session, pays out its rewards, advances game
// counters and stats, and feeds the tournament games score when the character
// is an entrant of the current window.
func (s *ProgressionService) GameComplete(characterID uint, in GameCompleteInput) (*GameCompleteResult, error) {
	if in.EarnedXP < 0 || in.EarnedKinetics < 0 {
		return nil, &RequestError{Status: 400, Code: "invalid_reward", Message: "rewards cannot be negative"}
	}
	result := &GameCompleteResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var char models.Character
		if err := tx.First(&char, characterID).Error; err != nil {
			return ErrCharacterNotFound
		}

		result.LevelsGained = applyExperience(&char, in.EarnedXP)
		char.GamesPlayed++
		if in.Won {
			char.GamesWon++
		}
		char.Balance = clampStat(char.Balance + in.BalanceDelta)
		char.Speed = clampStat(char.Speed + in.SpeedDelta)
		char.Courage = clampStat(char.Courage + in.CourageDelta)
		if err := tx.Model(&models.Character{}).Where("id = ?", char.ID).Updates(map[string]any{
			"experience":   char.Experience,
			"level":        char.Level,
			"games_played": char.GamesPlayed,
			"games_won":    char.GamesWon,
			"balance":      char.Balance,
			"speed":        char.Speed,
			"courage":      char.Courage,
		}).Error; err != nil {
			return err
		}

		if in.EarnedKinetics > 0 {
			desc := fmt.Sprintf("Mini-game: %s", in.GameName)
			if _, err := creditTx(tx, char.ID, in.EarnedKinetics, models.SourceGame, desc, ""); err != nil {
				return err
			}
		}
		gameRow := models.GameResult{
			CharacterID:    char.ID,
			GameName:       in.GameName,
			Won:            in.Won,
			Score:          in.Score,
			EarnedXP:       in.EarnedXP,
			EarnedKinetics: in.EarnedKinetics,
		}
		if err := tx.Create(&gameRow).Error; err != nil {
			return err
		}
		if err := bumpTournamentScoreTx(tx, char.ID, scoreGames, models.GameScorePoints, time.Now().UTC()); err != nil {
			return err
		}

		if in.Won {
			earned, err := recordProgressTx(tx, char.ID, models.RequirementGamesWon, 1, false)
			if err != nil {
				return err
			}
			result.Achievements = append(result.Achievements, earned...)
		}
		if result.LevelsGained > 0 {
			earned, err := recordProgressTx(tx, char.ID, models.RequirementLevel, char.Level, true)
			if err != nil {
				return err
			}
			result.Achievements = append(result.Achievements, earned...)
		}
		result.Character = &char
		return tx.First(result.Character, char.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddTrainingVisit records a trainer-confirmed gym session. Each visit feeds
// the training tournament score and the attendance achievement.
func (s *ProgressionService) AddTrainingVisit(characterID uint, visitDate time.Time, confirmedBy, notes string) (*models.TrainingVisit, []models.Achievement, error) {
	if visitDate.IsZero() {
		visitDate = time.Now().UTC()
	}
	visit := models.TrainingVisit{
		CharacterID: characterID,
		VisitDate:   visitDate.UTC(),
		ConfirmedBy: confirmedBy,
		Notes:       notes,
	}
	var earned []models.Achievement
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Character{}).Where("id = ?", characterID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrCharacterNotFound
		}
		if err := tx.Create(&visit).Error; err != nil {
			return err
		}
		if err := bumpTournamentScoreTx(tx, characterID, scoreTraining, models.TrainingScorePoints, visit.VisitDate); err != nil {
			return err
		}
		var err error
		earned, err = recordProgressTx(tx, characterID, models.RequirementTrainingVisits, 1, false)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &visit, earned, nil
}

// TrainingVisits lists a character's visits, newest first.
func (s *ProgressionService) TrainingVisits(characterID uint, limit int) ([]models.TrainingVisit, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var visits []models.TrainingVisit
	err := s.DB.Where("character_id = ?", characterID).
		Order("visit_date DESC").
		Limit(limit).
		Find(&visits).Error
	return visits, err
}

// TricksFor returns the catalog, optionally filtered by sport, with the
// character's mastered flags.
func (s *ProgressionService) TricksFor(characterID uint, sportType string) ([]TrickStatus, error) {
	q := s.DB.Order("id")
	if sportType != "" {
		q = q.Where("sport_type = ?", sportType)
	}
	var tricks []models.Trick
	if err := q.Find(&tricks).Error; err != nil {
		return nil, err
	}
	var mastered []models.CharacterTrick
	if err := s.DB.Where("character_id = ?", characterID).Find(&mastered).Error; err != nil {
		return nil, err
	}
	masteredAt := make(map[uint]time.Time, len(mastered))
	for _, m := range mastered {
		masteredAt[m.TrickID] = m.ConfirmedAt
	}

	out := make([]TrickStatus, 0, len(tricks))
	for _, t := range tricks {
		status := TrickStatus{Trick: t}
		if at, ok := masteredAt[t.ID]; ok {
			status.Mastered = true
			status.MasteredAt = &at
		}
		out = append(out, status)
	}
	return out, nil
}

// MasteredTricks returns only the tricks the character has confirmed.
func (s *ProgressionService) MasteredTricks(characterID uint) ([]TrickStatus, error) {
	all, err := s.TricksFor(characterID, "")
	if err != nil {
		return nil, err
	}
	out := make([]TrickStatus, 0, len(all))
	for _, t := range all {
		if t.Mastered {
			out = append(out, t)
		}
	}
	return out, nil
}

type TrickStatus struct {
	models.Trick
	Mastered   bool       `json:"mastered"`
	MasteredAt *time.Time `json:"mastered_at,omitempty"`
}
