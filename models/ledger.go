package models

import "time"

const (
	TransactionEarn  = "earn"
	TransactionSpend = "spend"
)

// Well-known transaction sources. Free-form values are allowed for admin
// grants but the engine itself only writes these.
const (
	SourceWelcome     = "welcome"
	SourceTricks      = "tricks"
	SourceGame        = "game"
	SourceShop        = "shop"
	SourceTournament  = "tournament"
	SourceAchievement = "achievement"
	SourceAdmin       = "admin"
	SourceRepair      = "ledger_repair"
)

// KineticsTransaction is an immutable ledger row. Corrections are written as
// new offsetting rows, never as updates.
type KineticsTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	CharacterID     uint      `json:"character_id" gorm:"index;not null"`
	Amount          int       `json:"amount" gorm:"not null"` // signed: earn > 0, spend < 0
	TransactionType string    `json:"transaction_type" gorm:"type:varchar(8);not null"`
	Source          string    `json:"source" gorm:"type:varchar(32);not null"`
	Description     string    `json:"description"`
	CreatedBy       string    `json:"created_by,omitempty"` // admin/trainer id, empty for system
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
