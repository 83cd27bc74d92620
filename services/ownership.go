package services

import (
	"errors"
	"fmt"
	"strconv"

	"kinetic-engine/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OwnershipService is the shop: cosmetic purchases, sport unlocks and
// accessories. Prices come from the server-side price list; client cost hints
// are ignored.
type OwnershipService struct {
	DB *gorm.DB
}

func NewOwnershipService(db *gorm.DB) *OwnershipService {
	return &OwnershipService{DB: db}
}

// PurchaseResult reports what a customization change actually cost. WasFree
// is true when the character already owned the value and only switched to it.
type PurchaseResult struct {
	Character *models.Character `json:"character"`
	ItemType  string            `json:"item_type"`
	ItemValue string            `json:"item_value"`
	Cost      int               `json:"cost"`
	WasFree   bool              `json:"was_free"`
}

// PurchaseCustomization applies a cosmetic change, charging only the first
// time a (type, value) pair is bought. Owned values switch for free without
// writing a new ownership row. Sport unlocks go through AddSport instead.
func (s *OwnershipService) PurchaseCustomization(characterID uint, itemType, itemValue, itemName string) (*PurchaseResult, error) {
	if itemType == models.ItemTypeSport {
		return nil, &RequestError{Status: 400, Code: "use_add_sport", Message: "sport unlocks use the add_sport action"}
	}
	price, priced := models.CustomizationPrices[itemType]
	if !priced && itemType != models.ItemTypeAvatarURL {
		return nil, ErrInvalidItemType
	}
	if itemValue == "" {
		return nil, &RequestError{Status: 400, Code: "missing_fields", Message: "item_value is required"}
	}

	result := &PurchaseResult{ItemType: itemType, ItemValue: itemValue}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var char models.Character
		if err := tx.First(&char, characterID).Error; err != nil {
			return ErrCharacterNotFound
		}

		// The unique ownership row decides who pays: the first insert wins
		// and is charged, a conflict means the value is already owned and
		// switching to it is free. A failed debit rolls the row back.
		charge := 0
		if price > 0 {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.PurchasedItem{
				CharacterID: characterID,
				ItemType:    itemType,
				ItemValue:   itemValue,
				ItemName:    itemName,
				Cost:        price,
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				charge = price
				desc := fmt.Sprintf("Customization: %s", displayName(itemType, itemName))
				if _, err := debitTx(tx, characterID, charge, models.SourceShop, desc, ""); err != nil {
					return err
				}
				if err := notifyTx(tx, characterID, "New look!",
					fmt.Sprintf("You bought %s for %d kinetics.", displayName(itemType, itemName), charge),
					models.NotifyPurchase, nil); err != nil {
					return err
				}
			}
		}
		result.Cost = charge
		result.WasFree = charge == 0

		return applyCustomizationTx(tx, characterID, itemType, itemValue)
	})
	if err != nil {
		return nil, err
	}
	char, err := loadCharacter(s.DB, characterID)
	if err != nil {
		return nil, err
	}
	result.Character = char
	return result, nil
}

func displayName(itemType, itemName string) string {
	if itemName != "" {
		return itemName
	}
	return itemType
}

func applyCustomizationTx(tx *gorm.DB, characterID uint, itemType, itemValue string) error {
	var column string
	var value any = itemValue
	switch itemType {
	case models.ItemTypeHairstyle:
		column = "hairstyle"
		value = atoiOrZero(itemValue)
	case models.ItemTypeBodyType:
		column = "body_type"
		value = atoiOrZero(itemValue)
	case models.ItemTypeHairColor:
		column = "hair_color"
	case models.ItemTypeName:
		column = "name"
	case models.ItemTypeAvatarURL:
		column = "avatar_url"
	default:
		return ErrInvalidItemType
	}
	return tx.Model(&models.Character{}).Where("id = ?", characterID).Update(column, value).Error
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func loadCharacter(db *gorm.DB, id uint) (*models.Character, error) {
	var char models.Character
	if err := db.First(&char, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	return &char, nil
}

// AddSport unlocks an additional sport for the fixed unlock price. Unlocking
// an already-held sport fails without charging.
func (s *OwnershipService) AddSport(characterID uint, sport string) (*models.Character, error) {
	if !validSports[sport] {
		return nil, ErrInvalidSport
	}
	price := models.CustomizationPrices[models.ItemTypeSport]
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var char models.Character
		if err := tx.First(&char, characterID).Error; err != nil {
			return ErrCharacterNotFound
		}
		if char.HasSport(sport) {
			return ErrSportAlreadyAdded
		}
		// The unique ownership row is the concurrency guard: a racing unlock
		// conflicts here and rolls back before any charge.
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.PurchasedItem{
			CharacterID: characterID,
			ItemType:    models.ItemTypeSport,
			ItemValue:   sport,
			ItemName:    sport,
			Cost:        price,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSportAlreadyAdded
		}
		if _, err := debitTx(tx, characterID, price, models.SourceShop, fmt.Sprintf("Unlocked sport: %s", sport), ""); err != nil {
			return err
		}
		sports := append(char.SportTypes, sport)
		if err := tx.Model(&models.Character{}).Where("id = ?", characterID).
			Update("sport_types", sports).Error; err != nil {
			return err
		}
		return notifyTx(tx, characterID, "New sport unlocked!",
			fmt.Sprintf("You can now ride %s.", sport), models.NotifyPurchase, nil)
	})
	if err != nil {
		return nil, err
	}
	return loadCharacter(s.DB, characterID)
}

// BuyAccessory purchases a catalog accessory. Each accessory can be owned
// once; a second buy fails before any charge.
func (s *OwnershipService) BuyAccessory(characterID uint, accessoryID uint) (*models.Accessory, *models.Character, error) {
	var acc models.Accessory
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_available = ?", accessoryID, true).First(&acc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.CharacterAccessory{CharacterID: characterID, AccessoryID: accessoryID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyOwned
		}
		if _, err := debitTx(tx, characterID, acc.Price, models.SourceShop,
			fmt.Sprintf("Accessory: %s", acc.Name), ""); err != nil {
			return err
		}
		return notifyTx(tx, characterID, "Accessory acquired!",
			fmt.Sprintf("%s is now yours for %d kinetics.", acc.Name, acc.Price),
			models.NotifyPurchase, map[string]any{"accessory_id": acc.ID})
	})
	if err != nil {
		return nil, nil, err
	}
	char, err := loadCharacter(s.DB, characterID)
	if err != nil {
		return nil, nil, err
	}
	acc.Owned = true
	return &acc, char, nil
}

// EquipAccessory toggles the equipped flag on an owned accessory. Equip state
// is free and does not touch the ledger.
func (s *OwnershipService) EquipAccessory(characterID, accessoryID uint, equipped bool) error {
	res := s.DB.Model(&models.CharacterAccessory{}).
		Where("character_id = ? AND accessory_id = ?", characterID, accessoryID).
		Update("is_equipped", equipped)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.DB.Model(&models.CharacterAccessory{}).
			Where("character_id = ? AND accessory_id = ?", characterID, accessoryID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// Accessories lists the catalog with the character's owned/equipped flags.
func (s *OwnershipService) Accessories(characterID uint) ([]models.Accessory, error) {
	var catalog []models.Accessory
	if err := s.DB.Where("is_available = ?", true).Order("price").Find(&catalog).Error; err != nil {
		return nil, err
	}
	var owned []models.CharacterAccessory
	if err := s.DB.Where("character_id = ?", characterID).Find(&owned).Error; err != nil {
		return nil, err
	}
	state := make(map[uint]models.CharacterAccessory, len(owned))
	for _, o := range owned {
		state[o.AccessoryID] = o
	}
	for i := range catalog {
		if o, ok := state[catalog[i].ID]; ok {
			catalog[i].Owned = true
			catalog[i].Equipped = o.IsEquipped
		}
	}
	return catalog, nil
}

// PurchasedItems lists the character's paid customization history.
func (s *OwnershipService) PurchasedItems(characterID uint) ([]models.PurchasedItem, error) {
	var items []models.PurchasedItem
	err := s.DB.Where("character_id = ?", characterID).
		Order("purchased_at DESC").
		Find(&items).Error
	return items, err
}
