package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SportSkate   = "skate"
	SportRollers = "rollers"
	SportBMX     = "bmx"
	SportScooter = "scooter"
	SportBike    = "bike"
)

const (
	RidingStyleAggressive = "aggressive"
	RidingStyleTechnical  = "technical"
	RidingStyleFreestyle  = "freestyle"
)

// StartingKinetics is the signing bonus every new character receives.
// It goes through the ledger like any other credit.
const StartingKinetics = 100

const MaxLevel = 100

// Character is the per-user progression aggregate. Kinetics is a cached
// balance; the kinetics_transactions table is the source of truth and the
// two are only ever updated together.
type Character struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	UserID      string   `json:"user_id" gorm:"uniqueIndex;not null"`
	Name        string   `json:"name" gorm:"not null"`
	Slug        string   `json:"slug" gorm:"uniqueIndex;not null"`
	SportType   string   `json:"sport_type" gorm:"not null"` // primary sport, always SportTypes[0]
	SportTypes  []string `json:"sport_types" gorm:"serializer:json"`
	RidingStyle string   `json:"riding_style" gorm:"default:'freestyle'"`

	Level      int `json:"level" gorm:"default:1"`
	Experience int `json:"experience" gorm:"default:0"`

	// Trainable stats, bounded 0-100.
	Balance int `json:"balance" gorm:"default:50"`
	Speed   int `json:"speed" gorm:"default:50"`
	Courage int `json:"courage" gorm:"default:50"`

	// Cosmetics
	BodyType  int    `json:"body_type" gorm:"default:1"`
	Hairstyle int    `json:"hairstyle" gorm:"default:1"`
	HairColor string `json:"hair_color" gorm:"default:'#000000'"`
	AvatarURL string `json:"avatar_url,omitempty"`

	Kinetics int `json:"kinetics" gorm:"default:0"` // cached ledger balance

	IsPro        bool       `json:"is_pro" gorm:"default:false"`
	ProExpiresAt *time.Time `json:"pro_expires_at,omitempty"`

	GamesWon    int `json:"games_won" gorm:"default:0"`
	GamesPlayed int `json:"games_played" gorm:"default:0"`

	Age         *int   `json:"age,omitempty"`
	TrainerName string `json:"trainer_name,omitempty"`

	Timestamps
}

// HasSport reports whether the character has unlocked the given sport.
func (c *Character) HasSport(sport string) bool {
	if c.SportType == sport {
		return true
	}
	for _, s := range c.SportTypes {
		if s == sport {
			return true
		}
	}
	return false
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
