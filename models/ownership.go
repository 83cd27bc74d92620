package models

import "time"

// Purchasable customization item types. ItemTypeSport unlocks a sport instead
// of switching a cosmetic field.
const (
	ItemTypeHairstyle = "hairstyle"
	ItemTypeHairColor = "hair_color"
	ItemTypeBodyType  = "body_type"
	ItemTypeName      = "name"
	ItemTypeAvatarURL = "avatar_url"
	ItemTypeSport     = "sport_type"
)

// PurchasedItem records that a character has paid for a customization value
// at least once. Unique per (character, item_type, item_value): switching
// back to an owned value is free and writes no new row.
type PurchasedItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CharacterID uint      `json:"character_id" gorm:"not null;uniqueIndex:idx_owned_item,priority:1"`
	ItemType    string    `json:"item_type" gorm:"type:varchar(32);not null;uniqueIndex:idx_owned_item,priority:2"`
	ItemValue   string    `json:"item_value" gorm:"not null;uniqueIndex:idx_owned_item,priority:3"`
	ItemName    string    `json:"item_name"`
	Cost        int       `json:"cost" gorm:"default:0"`
	PurchasedAt time.Time `json:"purchased_at" gorm:"autoCreateTime"`
}

// CharacterAccessory is an owned accessory instance. Equip state is free to
// toggle and independent of cosmetics.
type CharacterAccessory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CharacterID uint      `json:"character_id" gorm:"not null;uniqueIndex:idx_char_accessory,priority:1"`
	AccessoryID uint      `json:"accessory_id" gorm:"not null;uniqueIndex:idx_char_accessory,priority:2"`
	IsEquipped  bool      `json:"is_equipped" gorm:"default:false"`
	AcquiredAt  time.Time `json:"acquired_at" gorm:"autoCreateTime"`
}

// CharacterTrick is a confirmed (trainer-verified) trick mastery. Unique per
// (character, trick): re-confirming never re-awards rewards.
type CharacterTrick struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CharacterID uint      `json:"character_id" gorm:"not null;uniqueIndex:idx_char_trick,priority:1"`
	TrickID     uint      `json:"trick_id" gorm:"not null;uniqueIndex:idx_char_trick,priority:2"`
	ConfirmedBy string    `json:"confirmed_by,omitempty"`
	ConfirmedAt time.Time `json:"confirmed_at" gorm:"autoCreateTime;index"`
}

// CharacterAchievement tracks progress toward one achievement. Progress is
// monotonic non-decreasing; EarnedAt is set exactly once, when progress first
// reaches the requirement.
type CharacterAchievement struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	CharacterID   uint       `json:"character_id" gorm:"not null;uniqueIndex:idx_char_achievement,priority:1"`
	AchievementID uint       `json:"achievement_id" gorm:"not null;uniqueIndex:idx_char_achievement,priority:2"`
	Progress      int        `json:"progress" gorm:"default:0"`
	EarnedAt      *time.Time `json:"earned_at,omitempty"`
}
