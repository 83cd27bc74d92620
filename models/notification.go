package models

import "time"

const (
	NotifyInfo          = "info"
	NotifyWelcome       = "welcome"
	NotifyKinetics      = "kinetics"
	NotifyTricks        = "tricks"
	NotifyPurchase      = "purchase"
	NotifyAchievement   = "achievement"
	NotifyTournament    = "tournament"
	NotifyWeeklyResults = "weekly_results"
)

// CharacterNotification is an append-only inbox row. Data carries optional
// structured payload as JSON.
type CharacterNotification struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	CharacterID      uint      `json:"character_id" gorm:"not null;index"`
	Title            string    `json:"title" gorm:"not null"`
	Message          string    `json:"message"`
	NotificationType string    `json:"notification_type" gorm:"type:varchar(24);default:'info'"`
	IsRead           bool      `json:"is_read" gorm:"default:false;index"`
	Data             string    `json:"data,omitempty"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
