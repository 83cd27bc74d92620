package services

import (
	"fmt"
	"time"

	"kinetic-engine/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementService struct {
	DB *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

// recordProgressTx advances every achievement of the given requirement type.
// When absolute is true, value replaces the stored progress if higher;
// otherwise it is added. Progress never decreases and is capped at the
// requirement. Crossing the threshold awards the achievement exactly once:
// the guarded UPDATE on earned_at IS NULL is what makes a concurrent double
// grant impossible.
func recordProgressTx(tx *gorm.DB, characterID uint, requirementType string, value int, absolute bool) ([]models.Achievement, error) {
	if value <= 0 {
		return nil, nil
	}
	var defs []models.Achievement
	if err := tx.Where("requirement_type = ?", requirementType).Find(&defs).Error; err != nil {
		return nil, err
	}

	var earned []models.Achievement
	for _, def := range defs {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.CharacterAchievement{CharacterID: characterID, AchievementID: def.ID}).Error; err != nil {
			return nil, err
		}

		var row models.CharacterAchievement
		if err := tx.Where("character_id = ? AND achievement_id = ?", characterID, def.ID).
			First(&row).Error; err != nil {
			return nil, err
		}

		progress := row.Progress
		if absolute {
			if value > progress {
				progress = value
			}
		} else {
			progress += value
		}
		if progress > def.RequirementValue {
			progress = def.RequirementValue
		}
		if progress != row.Progress {
			if err := tx.Model(&models.CharacterAchievement{}).
				Where("id = ? AND progress < ?", row.ID, progress).
				Update("progress", progress).Error; err != nil {
				return nil, err
			}
		}

		if progress < def.RequirementValue || row.EarnedAt != nil {
			continue
		}
		now := time.Now().UTC()
		res := tx.Model(&models.CharacterAchievement{}).
			Where("id = ? AND earned_at IS NULL", row.ID).
			Update("earned_at", now)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			continue // lost the race, someone already granted it
		}
		if def.RewardKinetics > 0 {
			desc := fmt.Sprintf("Achievement unlocked: %s", def.Name)
			if _, err := creditTx(tx, characterID, def.RewardKinetics, models.SourceAchievement, desc, ""); err != nil {
				return nil, err
			}
		}
		if err := notifyTx(tx, characterID, "Achievement unlocked!", def.Name+": "+def.Description,
			models.NotifyAchievement, map[string]any{"achievement_id": def.ID, "reward_kinetics": def.RewardKinetics}); err != nil {
			return nil, err
		}
		earned = append(earned, def)
	}
	return earned, nil
}

// AchievementsFor returns the full catalog with the character's progress and
// earned state merged in.
func (s *AchievementService) AchievementsFor(characterID uint) ([]AchievementStatus, error) {
	var defs []models.Achievement
	if err := s.DB.Order("id").Find(&defs).Error; err != nil {
		return nil, err
	}
	var rows []models.CharacterAchievement
	if err := s.DB.Where("character_id = ?", characterID).Find(&rows).Error; err != nil {
		return nil, err
	}
	byAchievement := make(map[uint]models.CharacterAchievement, len(rows))
	for _, r := range rows {
		byAchievement[r.AchievementID] = r
	}

	out := make([]AchievementStatus, 0, len(defs))
	for _, def := range defs {
		status := AchievementStatus{Achievement: def}
		if row, ok := byAchievement[def.ID]; ok {
			status.Progress = row.Progress
			status.EarnedAt = row.EarnedAt
			status.Earned = row.EarnedAt != nil
		}
		out = append(out, status)
	}
	return out, nil
}

type AchievementStatus struct {
	models.Achievement
	Progress int        `json:"progress"`
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}
