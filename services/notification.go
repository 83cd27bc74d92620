package services

import (
	"encoding/json"

	"kinetic-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// notifyTx appends one inbox row. data is marshalled to JSON when non-nil;
// notification failures never abort the surrounding flow at call sites that
// treat the inbox as best-effort, so callers decide whether to propagate.
func notifyTx(tx *gorm.DB, characterID uint, title, message, notificationType string, data any) error {
	payload := ""
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		payload = string(raw)
	}
	row := models.CharacterNotification{
		ID:               uuid.NewString(),
		CharacterID:      characterID,
		Title:            title,
		Message:          message,
		NotificationType: notificationType,
		Data:             payload,
	}
	return tx.Create(&row).Error
}

// List returns the newest notifications plus the unread count.
func (s *NotificationService) List(characterID uint, limit int) ([]models.CharacterNotification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var rows []models.CharacterNotification
	err := s.DB.Where("character_id = ?", characterID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	var unread int64
	err = s.DB.Model(&models.CharacterNotification{}).
		Where("character_id = ? AND is_read = ?", characterID, false).
		Count(&unread).Error
	return rows, unread, err
}

// MarkRead marks the given notifications read, or all of them when ids is
// empty. Marking an already-read notification is a no-op.
func (s *NotificationService) MarkRead(characterID uint, ids []string) (int64, error) {
	q := s.DB.Model(&models.CharacterNotification{}).
		Where("character_id = ? AND is_read = ?", characterID, false)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Update("is_read", true)
	return res.RowsAffected, res.Error
}
