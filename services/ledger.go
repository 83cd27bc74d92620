package services

import (
	"errors"
	"fmt"
	"log"

	"kinetic-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService owns the kinetics ledger. Every balance change goes through
// creditTx/debitTx so the cached Character.Kinetics and the transaction table
// move together inside one database transaction.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// creditTx adds amount (> 0) to the character's cached balance and appends the
// matching earn row.
func creditTx(tx *gorm.DB, characterID uint, amount int, source, description, createdBy string) (*models.KineticsTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	res := tx.Model(&models.Character{}).
		Where("id = ?", characterID).
		Update("kinetics", gorm.Expr("kinetics + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCharacterNotFound
	}
	return appendLedgerRow(tx, characterID, amount, models.TransactionEarn, source, description, createdBy)
}

// debitTx subtracts amount (> 0) with an atomic balance guard. The conditional
// UPDATE is the overdraft check: zero rows affected means the balance was too
// low (or the character is gone) and nothing was written.
func debitTx(tx *gorm.DB, characterID uint, amount int, source, description, createdBy string) (*models.KineticsTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	res := tx.Model(&models.Character{}).
		Where("id = ? AND kinetics >= ?", characterID, amount).
		Update("kinetics", gorm.Expr("kinetics - ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Character{}).Where("id = ?", characterID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrCharacterNotFound
		}
		return nil, ErrInsufficientFunds
	}
	return appendLedgerRow(tx, characterID, -amount, models.TransactionSpend, source, description, createdBy)
}

func appendLedgerRow(tx *gorm.DB, characterID uint, amount int, txType, source, description, createdBy string) (*models.KineticsTransaction, error) {
	row := models.KineticsTransaction{
		ID:              uuid.NewString(),
		CharacterID:     characterID,
		Amount:          amount,
		TransactionType: txType,
		Source:          source,
		Description:     description,
		CreatedBy:       createdBy,
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Credit grants kinetics outside a larger flow (admin grants and the like).
func (s *LedgerService) Credit(characterID uint, amount int, source, description, createdBy string) (*models.Character, error) {
	char, _, err := s.Adjust(characterID, amount, source, description, createdBy)
	return char, err
}

// Debit spends kinetics as a standalone operation.
func (s *LedgerService) Debit(characterID uint, amount int, source, description, createdBy string) (*models.Character, error) {
	char, _, err := s.Adjust(characterID, -amount, source, description, createdBy)
	return char, err
}

// Adjust applies a signed balance change: positive credits, negative debits
// (with the overdraft guard). Returns the updated character and the ledger
// row that was written.
func (s *LedgerService) Adjust(characterID uint, amount int, source, description, createdBy string) (*models.Character, *models.KineticsTransaction, error) {
	var (
		char models.Character
		row  *models.KineticsTransaction
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if amount >= 0 {
			row, err = creditTx(tx, characterID, amount, source, description, createdBy)
		} else {
			row, err = debitTx(tx, characterID, -amount, source, description, createdBy)
		}
		if err != nil {
			return err
		}
		return tx.First(&char, characterID).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &char, row, nil
}

// Transactions returns the character's ledger history, newest first.
func (s *LedgerService) Transactions(characterID uint, limit int) ([]models.KineticsTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.KineticsTransaction
	err := s.DB.Where("character_id = ?", characterID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Reconcile compares the cached balance of every character against the sum of
// its ledger rows and resets drifted caches to the ledger value. The ledger is
// the source of truth; the cache is only a read optimization. Returns the
// number of repaired characters.
func (s *LedgerService) Reconcile() (int, error) {
	type balanceRow struct {
		ID       uint
		Kinetics int
		Total    int
	}
	var drifted []balanceRow
	err := s.DB.Model(&models.Character{}).
		Select("characters.id, characters.kinetics, COALESCE(SUM(kinetics_transactions.amount), 0) AS total").
		Joins("LEFT JOIN kinetics_transactions ON kinetics_transactions.character_id = characters.id").
		Where("characters.deleted_at IS NULL").
		Group("characters.id, characters.kinetics").
		Having("characters.kinetics <> COALESCE(SUM(kinetics_transactions.amount), 0)").
		Scan(&drifted).Error
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, row := range drifted {
		res := s.DB.Model(&models.Character{}).
			Where("id = ? AND kinetics = ?", row.ID, row.Kinetics).
			Update("kinetics", row.Total)
		if res.Error != nil {
			return repaired, res.Error
		}
		if res.RowsAffected == 0 {
			// Balance moved since the scan; it will be re-checked next pass.
			continue
		}
		log.Printf("[ledger] repaired character %d: cached %d, ledger %d", row.ID, row.Kinetics, row.Total)
		repaired++
	}
	return repaired, nil
}

// IsRequestError reports whether err carries a client-facing error code.
func IsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}
