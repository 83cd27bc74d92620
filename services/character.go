package services

import (
	"errors"
	"fmt"

	"kinetic-engine/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CharacterService struct {
	DB *gorm.DB
}

func NewCharacterService(db *gorm.DB) *CharacterService {
	return &CharacterService{DB: db}
}

// CreateCharacterInput carries the creation form. Cosmetic fields fall back
// to model defaults when zero.
type CreateCharacterInput struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	SportType   string `json:"sport_type"`
	RidingStyle string `json:"riding_style"`
	BodyType    int    `json:"body_type"`
	Hairstyle   int    `json:"hairstyle"`
	HairColor   string `json:"hair_color"`
	AvatarURL   string `json:"avatar_url"`
	Age         *int   `json:"age"`
}

var validSports = map[string]bool{
	models.SportSkate:   true,
	models.SportRollers: true,
	models.SportBMX:     true,
	models.SportScooter: true,
	models.SportBike:    true,
}

// Create makes the one character a user is allowed, grants the signing bonus
// through the ledger, and seeds the welcome notification and the creation
// achievement. One user, one character; a second create fails.
func (s *CharacterService) Create(in CreateCharacterInput) (*models.Character, error) {
	if in.UserID == "" || in.Name == "" {
		return nil, &RequestError{Status: 400, Code: "missing_fields", Message: "user_id and name are required"}
	}
	if !validSports[in.SportType] {
		return nil, ErrInvalidSport
	}

	char := models.Character{
		UserID:      in.UserID,
		Name:        in.Name,
		SportType:   in.SportType,
		SportTypes:  []string{in.SportType},
		RidingStyle: in.RidingStyle,
		Level:       1,
		Balance:     50,
		Speed:       50,
		Courage:     50,
		BodyType:    in.BodyType,
		Hairstyle:   in.Hairstyle,
		HairColor:   in.HairColor,
		AvatarURL:   in.AvatarURL,
		Age:         in.Age,
	}
	if char.RidingStyle == "" {
		char.RidingStyle = models.RidingStyleFreestyle
	}
	if char.BodyType == 0 {
		char.BodyType = 1
	}
	if char.Hairstyle == 0 {
		char.Hairstyle = 1
	}
	if char.HairColor == "" {
		char.HairColor = "#000000"
	}
	applyRidingStyleBonus(&char)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Character{}).Where("user_id = ?", in.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCharacterExists
		}

		var err error
		char.Slug, err = uniqueSlug(tx, in.Name)
		if err != nil {
			return err
		}
		if err := tx.Create(&char).Error; err != nil {
			return err
		}
		if _, err := creditTx(tx, char.ID, models.StartingKinetics, models.SourceWelcome, "Welcome bonus", ""); err != nil {
			return err
		}
		if err := notifyTx(tx, char.ID, "Welcome to the park!",
			fmt.Sprintf("%s is ready to ride. You start with %d kinetics.", char.Name, models.StartingKinetics),
			models.NotifyWelcome, nil); err != nil {
			return err
		}
		if _, err := recordProgressTx(tx, char.ID, models.RequirementCharacterCreated, 1, true); err != nil {
			return err
		}
		return tx.First(&char, char.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &char, nil
}

// applyRidingStyleBonus gives the one-time creation stat bonus for the chosen
// style. Stats stay within 0-100.
func applyRidingStyleBonus(c *models.Character) {
	switch c.RidingStyle {
	case models.RidingStyleAggressive:
		c.Courage = clampStat(c.Courage + 10)
	case models.RidingStyleTechnical:
		c.Balance = clampStat(c.Balance + 10)
	case models.RidingStyleFreestyle:
		c.Speed = clampStat(c.Speed + 10)
	}
}

func clampStat(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// uniqueSlug derives a URL slug from the character name, suffixing a short
// random id when the plain slug is taken.
func uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "rider"
	}
	var count int64
	if err := tx.Model(&models.Character{}).Where("slug = ?", base).Count(&count).Error; err != nil {
		return "", err
	}
	if count == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}

// UpdateInput lists the directly editable fields. Cosmetics that cost
// kinetics go through the shop instead; these are the free knobs (stats come
// from mini-game outcomes, the rest is profile metadata).
type UpdateInput struct {
	Balance     *int    `json:"balance"`
	Speed       *int    `json:"speed"`
	Courage     *int    `json:"courage"`
	AvatarURL   *string `json:"avatar_url"`
	Age         *int    `json:"age"`
	TrainerName *string `json:"trainer_name"`
	RidingStyle *string `json:"riding_style"`
}

// Update applies the provided fields. Stat writes are clamped to 0-100.
func (s *CharacterService) Update(characterID uint, in UpdateInput) (*models.Character, error) {
	updates := map[string]any{}
	if in.Balance != nil {
		updates["balance"] = clampStat(*in.Balance)
	}
	if in.Speed != nil {
		updates["speed"] = clampStat(*in.Speed)
	}
	if in.Courage != nil {
		updates["courage"] = clampStat(*in.Courage)
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}
	if in.Age != nil {
		updates["age"] = *in.Age
	}
	if in.TrainerName != nil {
		updates["trainer_name"] = *in.TrainerName
	}
	if in.RidingStyle != nil {
		switch *in.RidingStyle {
		case models.RidingStyleAggressive, models.RidingStyleTechnical, models.RidingStyleFreestyle:
			updates["riding_style"] = *in.RidingStyle
		default:
			return nil, &RequestError{Status: 400, Code: "invalid_riding_style", Message: "unknown riding style"}
		}
	}
	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	var char models.Character
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Character{}).Where("id = ?", characterID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCharacterNotFound
		}
		return tx.First(&char, characterID).Error
	})
	if err != nil {
		return nil, err
	}
	return &char, nil
}

// ByUserID loads the character owned by a user.
func (s *CharacterService) ByUserID(userID string) (*models.Character, error) {
	var char models.Character
	err := s.DB.Where("user_id = ?", userID).First(&char).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &char, nil
}

// ByID loads a character by primary key.
func (s *CharacterService) ByID(characterID uint) (*models.Character, error) {
	var char models.Character
	err := s.DB.First(&char, characterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &char, nil
}

// All lists characters for the public roster, strongest first.
func (s *CharacterService) All(limit int) ([]models.Character, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var chars []models.Character
	err := s.DB.Order("level DESC, experience DESC").Limit(limit).Find(&chars).Error
	return chars, err
}
