package models

import "time"

// TrainingVisit is a trainer-confirmed gym attendance. Feeds the tournament
// training score and the training_visits achievement counter.
type TrainingVisit struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CharacterID uint      `json:"character_id" gorm:"not null;index"`
	VisitDate   time.Time `json:"visit_date" gorm:"not null;index"`
	ConfirmedBy string    `json:"confirmed_by,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// GameResult records one completed mini-game session.
type GameResult struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	CharacterID    uint      `json:"character_id" gorm:"not null;index"`
	GameName       string    `json:"game_name"`
	Won            bool      `json:"won" gorm:"default:false"`
	Score          int       `json:"score" gorm:"default:0"`
	EarnedXP       int       `json:"earned_xp" gorm:"default:0"`
	EarnedKinetics int       `json:"earned_kinetics" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
