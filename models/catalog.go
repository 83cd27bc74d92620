package models

import "time"

const (
	DifficultyNovice  = "novice"
	DifficultyAmateur = "amateur"
	DifficultyPro     = "pro"
	DifficultyLegend  = "legend"
)

const (
	CategoryBalance = "balance"
	CategorySpins   = "spins"
	CategoryJumps   = "jumps"
	CategorySlides  = "slides"
	CategoryFlips   = "flips"
)

// Trick is a static catalog entry. Loaded once at startup and treated as
// immutable afterwards.
type Trick struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"not null;uniqueIndex:idx_trick_sport_name,priority:2"`
	SportType        string    `json:"sport_type" gorm:"not null;index;uniqueIndex:idx_trick_sport_name,priority:1"`
	Category         string    `json:"category" gorm:"type:varchar(16)"`
	Difficulty       string    `json:"difficulty" gorm:"type:varchar(16)"`
	ExperienceReward int       `json:"experience_reward" gorm:"default:0"`
	KineticsReward   int       `json:"kinetics_reward" gorm:"default:0"`
	Description      string    `json:"description,omitempty"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Achievement requirement types evaluated by the achievement service.
const (
	RequirementCharacterCreated = "character_created"
	RequirementTricksCount      = "tricks_count"
	RequirementLevel            = "level"
	RequirementGamesWon         = "games_won"
	RequirementTrainingVisits   = "training_visits"
)

type Achievement struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"not null;uniqueIndex"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon,omitempty"`
	RequirementType  string    `json:"requirement_type" gorm:"type:varchar(32);not null"`
	RequirementValue int       `json:"requirement_value" gorm:"not null"`
	RewardKinetics   int       `json:"reward_kinetics" gorm:"default:0"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

type Accessory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	ItemType    string    `json:"item_type" gorm:"type:varchar(16);default:'accessory'"`
	Rarity      string    `json:"rarity" gorm:"type:varchar(16);default:'common'"`
	Price       int       `json:"price" gorm:"not null"`
	IsAvailable bool      `json:"is_available" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Per-character view, filled by the read path.
	Owned    bool `json:"owned,omitempty" gorm:"-"`
	Equipped bool `json:"equipped,omitempty" gorm:"-"`
}

// CustomizationPrices is the fixed price list for cosmetic changes and sport
// unlocks. The client may send a cost hint but the server always charges
// these values.
var CustomizationPrices = map[string]int{
	ItemTypeHairstyle: 30,
	ItemTypeHairColor: 20,
	ItemTypeBodyType:  50,
	ItemTypeName:      50,
	ItemTypeSport:     100,
}

// TournamentEntryFee is the weekly tournament entry fee in kinetics.
const TournamentEntryFee = 100

// Per-activity tournament score weights.
const (
	GameScorePoints     = 10
	TrickScorePoints    = 25
	TrainingScorePoints = 30
)

// SeedTricks is the built-in trick catalog, a few per sport and difficulty.
var SeedTricks = []Trick{
	{SportType: SportSkate, Name: "Ollie", Category: CategoryJumps, Difficulty: DifficultyNovice, ExperienceReward: 20, KineticsReward: 10, Description: "The foundation jump"},
	{SportType: SportSkate, Name: "Manual", Category: CategoryBalance, Difficulty: DifficultyNovice, ExperienceReward: 20, KineticsReward: 10},
	{SportType: SportSkate, Name: "Kickflip", Category: CategoryFlips, Difficulty: DifficultyAmateur, ExperienceReward: 50, KineticsReward: 20},
	{SportType: SportSkate, Name: "50-50 Grind", Category: CategorySlides, Difficulty: DifficultyAmateur, ExperienceReward: 50, KineticsReward: 20},
	{SportType: SportSkate, Name: "360 Flip", Category: CategoryFlips, Difficulty: DifficultyPro, ExperienceReward: 100, KineticsReward: 40},
	{SportType: SportSkate, Name: "Laser Flip", Category: CategoryFlips, Difficulty: DifficultyLegend, ExperienceReward: 200, KineticsReward: 80},
	{SportType: SportRollers, Name: "Parallel Slide", Category: CategorySlides, Difficulty: DifficultyNovice, ExperienceReward: 20, KineticsReward: 10},
	{SportType: SportRollers, Name: "One-Foot Glide", Category: CategoryBalance, Difficulty: DifficultyNovice, ExperienceReward: 20, KineticsReward: 10},
	{SportType: SportRollers, Name: "360 Spin", Category: CategorySpins, Difficulty: DifficultyAmateur, ExperienceReward: 50, KineticsReward: 20},
	{SportType: SportRollers, Name: "Soul Grind", Category: CategorySlides, Difficulty: DifficultyPro, ExperienceReward: 100, KineticsReward: 40},
	{SportType: SportBMX, Name: "Bunny Hop", Category: CategoryJumps, Difficulty: DifficultyNovice, ExperienceReward: 20, KineticsReward: 10},
	{SportType: SportBMX, Name: "Barspin", Category: CategorySpins, Difficulty: DifficultyAmateur, ExperienceReward: 50, KineticsReward: 20},
	{SportType: SportBMX, Name: "Tailwhip", Category: CategorySpins, Difficulty: DifficultyPro, ExperienceReward: 100, KineticsReward: 40},
	{SportType: SportBMX, Name: "Backflip", Category: CategoryFlips, Difficulty: DifficultyLegend, ExperienceReward: 200, KineticsReward: 80},
	{SportType: SportScooter, Name: "Hop", Category: CategoryJumps, Difficulty: DifficultyNovice, ExperienceReward: 20, KineticsReward: 10},
	{SportType: SportScooter, Name: "No Footer", Category: CategoryJumps, Difficulty: DifficultyAmateur, ExperienceReward: 50, KineticsReward: 20},
	{SportType: SportScooter, Name: "Bri Flip", Category: CategoryFlips, Difficulty: DifficultyPro, ExperienceReward: 100, KineticsReward: 40},
	{SportType: SportBike, Name: "Wheelie", Category: CategoryBalance, Difficulty: DifficultyNovice, ExperienceReward: 20, KineticsReward: 10},
	{SportType: SportBike, Name: "Endo", Category: CategoryBalance, Difficulty: DifficultyAmateur, ExperienceReward: 50, KineticsReward: 20},
	{SportType: SportBike, Name: "180 Hop", Category: CategorySpins, Difficulty: DifficultyPro, ExperienceReward: 100, KineticsReward: 40},
}

var SeedAchievements = []Achievement{
	{Name: "First Steps", Description: "Create your character", Icon: "star", RequirementType: RequirementCharacterCreated, RequirementValue: 1, RewardKinetics: 0},
	{Name: "Apprentice", Description: "Master your first trick", Icon: "zap", RequirementType: RequirementTricksCount, RequirementValue: 1, RewardKinetics: 25},
	{Name: "Trickster", Description: "Master 5 tricks", Icon: "zap", RequirementType: RequirementTricksCount, RequirementValue: 5, RewardKinetics: 100},
	{Name: "Trick Legend", Description: "Master 15 tricks", Icon: "flame", RequirementType: RequirementTricksCount, RequirementValue: 15, RewardKinetics: 300},
	{Name: "Rising Star", Description: "Reach level 5", Icon: "trending-up", RequirementType: RequirementLevel, RequirementValue: 5, RewardKinetics: 150},
	{Name: "Veteran", Description: "Reach level 10", Icon: "award", RequirementType: RequirementLevel, RequirementValue: 10, RewardKinetics: 400},
	{Name: "First Victory", Description: "Win a mini-game", Icon: "trophy", RequirementType: RequirementGamesWon, RequirementValue: 1, RewardKinetics: 50},
	{Name: "Champion", Description: "Win 10 mini-games", Icon: "trophy", RequirementType: RequirementGamesWon, RequirementValue: 10, RewardKinetics: 250},
	{Name: "Regular", Description: "Attend 10 training sessions", Icon: "calendar", RequirementType: RequirementTrainingVisits, RequirementValue: 10, RewardKinetics: 200},
}

var SeedAccessories = []Accessory{
	{Name: "Cool Cap", Price: 200, Icon: "cap", Rarity: RarityRare, ItemType: "accessory"},
	{Name: "Style Sneakers", Price: 500, Icon: "sneakers", Rarity: RarityEpic, ItemType: "accessory"},
	{Name: "Safety Helmet", Price: 300, Icon: "helmet", Rarity: RarityCommon, ItemType: "accessory"},
	{Name: "Graffiti Deck", Price: 1000, Icon: "palette", Rarity: RarityLegendary, ItemType: "accessory"},
	{Name: "XP Booster x2", Price: 150, Icon: "bolt", Rarity: RarityRare, ItemType: "booster"},
	{Name: "Neon Aura", Price: 750, Icon: "sparkle", Rarity: RarityEpic, ItemType: "accessory"},
	{Name: "Pro Gloves", Price: 250, Icon: "gloves", Rarity: RarityRare, ItemType: "accessory"},
	{Name: "Sunglasses", Price: 180, Icon: "shades", Rarity: RarityCommon, ItemType: "accessory"},
}
