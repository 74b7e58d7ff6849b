package economy

import (
	"errors"

	"github.com/lunaticat/rpgmarket/model"
	"gorm.io/gorm"
)

// Lookup helpers take a *gorm.DB so they work both on the root handle
// and inside a transaction.

// FindCharacterOwned loads a character by id and verifies it belongs
// to accountID. A missing character and a foreign owner are distinct
// failures: the caller learns whether the id exists.
func FindCharacterOwned(db *gorm.DB, charID, accountID int64) (*model.Character, error) {
	var char model.Character
	if err := db.Where("id = ?", charID).First(&char).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	if char.AccountID != accountID {
		return nil, ErrCharacterForbidden
	}
	return &char, nil
}

// FindCharacterPublic loads a character by id with no ownership check.
func FindCharacterPublic(db *gorm.DB, charID int64) (*model.Character, error) {
	var char model.Character
	if err := db.Where("id = ?", charID).First(&char).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	return &char, nil
}

// FindItem loads a catalog item by code.
func FindItem(db *gorm.DB, itemCode int) (*model.Item, error) {
	var item model.Item
	if err := db.Where("code = ?", itemCode).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindInventoryLine returns the (character, item) inventory line, or
// nil if the character holds none. Absence is not an error; callers
// decide what it means.
func FindInventoryLine(db *gorm.DB, charID int64, itemCode int) (*model.Inventory, error) {
	var inv model.Inventory
	err := db.Where("char_id = ? AND item_code = ?", charID, itemCode).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindEquippedLine returns the worn (character, item) line, or nil if
// the item is not equipped.
func FindEquippedLine(db *gorm.DB, charID int64, itemCode int) (*model.Equipment, error) {
	var eq model.Equipment
	err := db.Where("char_id = ? AND item_code = ?", charID, itemCode).First(&eq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &eq, nil
}
