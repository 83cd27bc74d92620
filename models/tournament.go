package models

import "time"

const (
	TournamentActive    = "active"
	TournamentCompleted = "completed"
)

// Tournament is one weekly competitive window. Windows are contiguous and
// non-overlapping: week_start is always a Monday, week_end the following
// Sunday. MonthKey ("2026-08", keyed by week_start) groups windows for the
// monthly leaderboard.
type Tournament struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	WeekStart time.Time `json:"week_start" gorm:"uniqueIndex;not null"`
	WeekEnd   time.Time `json:"week_end" gorm:"not null"`
	MonthKey  string    `json:"month_key" gorm:"type:varchar(7);index;not null"`
	Status    string    `json:"status" gorm:"type:varchar(16);default:'active'"`
	EntryFee  int       `json:"entry_fee" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TournamentEntry is one character's participation in a window. Unique per
// (tournament, character); Score is always the sum of the three components.
type TournamentEntry struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TournamentID  uint      `json:"tournament_id" gorm:"not null;uniqueIndex:idx_tournament_entry,priority:1"`
	CharacterID   uint      `json:"character_id" gorm:"not null;uniqueIndex:idx_tournament_entry,priority:2;index"`
	GamesScore    int       `json:"games_score" gorm:"default:0"`
	TricksScore   int       `json:"tricks_score" gorm:"default:0"`
	TrainingScore int       `json:"training_score" gorm:"default:0"`
	Score         int       `json:"score" gorm:"default:0"`
	Rank          int       `json:"rank" gorm:"default:0"` // 0 = unranked
	JoinedAt      time.Time `json:"joined_at" gorm:"autoCreateTime"`

	// Denormalized for listings, filled by read paths.
	CharacterName string `json:"character_name,omitempty" gorm:"-"`
	AvatarURL     string `json:"avatar_url,omitempty" gorm:"-"`
	SportType     string `json:"sport_type,omitempty" gorm:"-"`
	Level         int    `json:"level,omitempty" gorm:"-"`
}

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// LeaderboardEntry rows are derived wholesale from tournament entries per
// period and replaced on every recompute, never edited in place.
type LeaderboardEntry struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	PeriodType    string    `json:"period_type" gorm:"type:varchar(8);not null;uniqueIndex:idx_leaderboard_period,priority:1"`
	PeriodKey     string    `json:"period_key" gorm:"type:varchar(10);not null;uniqueIndex:idx_leaderboard_period,priority:2"`
	CharacterID   uint      `json:"character_id" gorm:"not null;uniqueIndex:idx_leaderboard_period,priority:3"`
	Score         int       `json:"score" gorm:"default:0"`
	GamesScore    int       `json:"games_score" gorm:"default:0"`
	TricksScore   int       `json:"tricks_score" gorm:"default:0"`
	TrainingScore int       `json:"training_score" gorm:"default:0"`
	Rank          int       `json:"rank" gorm:"not null"`
	ComputedAt    time.Time `json:"computed_at" gorm:"autoUpdateTime"`

	CharacterName string `json:"character_name,omitempty" gorm:"-"`
	AvatarURL     string `json:"avatar_url,omitempty" gorm:"-"`
	SportType     string `json:"sport_type,omitempty" gorm:"-"`
	Level         int    `json:"level,omitempty" gorm:"-"`
}
