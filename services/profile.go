package services

import (
	"errors"
	"time"

	"kinetic-engine/models"

	"gorm.io/gorm"
)

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// PublicProfile is the read-only view other players see. No balance, no
// inbox, no ledger.
type PublicProfile struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	SportType   string   `json:"sport_type"`
	SportTypes  []string `json:"sport_types"`
	RidingStyle string   `json:"riding_style"`
	Level       int      `json:"level"`
	Experience  int      `json:"experience"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	BodyType    int      `json:"body_type"`
	Hairstyle   int      `json:"hairstyle"`
	HairColor   string   `json:"hair_color"`
	IsPro       bool     `json:"is_pro"`
	GamesWon    int      `json:"games_won"`
	GamesPlayed int      `json:"games_played"`

	MasteredTricks int                 `json:"mastered_tricks"`
	TrainingVisits int                 `json:"training_visits"`
	Achievements   []AchievementStatus `json:"achievements"`
	Equipped       []models.Accessory  `json:"equipped_accessories"`
	History        []TournamentRecord  `json:"tournament_history"`
}

// TournamentRecord is one past tournament result on a public profile.
type TournamentRecord struct {
	WeekStart time.Time `json:"week_start"`
	Rank      int       `json:"rank"`
	Score     int       `json:"score"`
}

// BySlug resolves a public profile by its URL slug.
func (s *ProfileService) BySlug(slugValue string) (*PublicProfile, error) {
	var char models.Character
	err := s.DB.Where("slug = ?", slugValue).First(&char).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.build(&char)
}

// ByCharacterID resolves a public profile by character id.
func (s *ProfileService) ByCharacterID(characterID uint) (*PublicProfile, error) {
	var char models.Character
	err := s.DB.First(&char, characterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.build(&char)
}

func (s *ProfileService) build(char *models.Character) (*PublicProfile, error) {
	var tricks int64
	if err := s.DB.Model(&models.CharacterTrick{}).Where("character_id = ?", char.ID).Count(&tricks).Error; err != nil {
		return nil, err
	}
	var visits int64
	if err := s.DB.Model(&models.TrainingVisit{}).Where("character_id = ?", char.ID).Count(&visits).Error; err != nil {
		return nil, err
	}

	achievements := NewAchievementService(s.DB)
	status, err := achievements.AchievementsFor(char.ID)
	if err != nil {
		return nil, err
	}
	earned := status[:0:0]
	for _, a := range status {
		if a.Earned {
			earned = append(earned, a)
		}
	}

	var equippedIDs []uint
	if err := s.DB.Model(&models.CharacterAccessory{}).
		Where("character_id = ? AND is_equipped = ?", char.ID, true).
		Pluck("accessory_id", &equippedIDs).Error; err != nil {
		return nil, err
	}
	var equipped []models.Accessory
	if len(equippedIDs) > 0 {
		if err := s.DB.Where("id IN ?", equippedIDs).Find(&equipped).Error; err != nil {
			return nil, err
		}
	}

	// Completed tournaments only, newest week first.
	var history []TournamentRecord
	if err := s.DB.Model(&models.TournamentEntry{}).
		Select("tournaments.week_start, tournament_entries.rank, tournament_entries.score").
		Joins("JOIN tournaments ON tournaments.id = tournament_entries.tournament_id").
		Where("tournament_entries.character_id = ? AND tournaments.status = ?", char.ID, models.TournamentCompleted).
		Order("tournaments.week_start DESC").
		Limit(12).
		Scan(&history).Error; err != nil {
		return nil, err
	}

	return &PublicProfile{
		ID:             char.ID,
		Name:           char.Name,
		Slug:           char.Slug,
		SportType:      char.SportType,
		SportTypes:     char.SportTypes,
		RidingStyle:    char.RidingStyle,
		Level:          char.Level,
		Experience:     char.Experience,
		AvatarURL:      char.AvatarURL,
		BodyType:       char.BodyType,
		Hairstyle:      char.Hairstyle,
		HairColor:      char.HairColor,
		IsPro:          char.IsPro,
		GamesWon:       char.GamesWon,
		GamesPlayed:    char.GamesPlayed,
		MasteredTricks: int(tricks),
		TrainingVisits: int(visits),
		Achievements:   earned,
		Equipped:       equipped,
		History:        history,
	}, nil
}
