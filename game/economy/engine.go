package economy

import (
	"context"
	"math"

	"github.com/lunaticat/rpgmarket/config"
	"github.com/lunaticat/rpgmarket/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service implements the equip/unequip/buy/sell state transitions.
// Every transition runs in one transaction: the character row is
// locked first, then all reads and writes happen on the tx handle,
// so concurrent requests against the same character serialize and
// either everything commits or nothing does.
type Service struct {
	db     *gorm.DB
	game   config.GameConfig
	logger *zap.Logger
}

// NewService creates an economy Service.
func NewService(db *gorm.DB, game config.GameConfig, logger *zap.Logger) *Service {
	return &Service{db: db, game: game, logger: logger}
}

// EquipResult reports the stat change from an equip or unequip.
type EquipResult struct {
	CharacterName string `json:"character_name"`
	ItemName      string `json:"item_name"`
	HealthDelta   int    `json:"health_delta"`
	NewHealth     int    `json:"new_health"`
	PowerDelta    int    `json:"power_delta"`
	NewPower      int    `json:"new_power"`
}

// TradeResult reports the outcome of a buy or sell.
type TradeResult struct {
	ItemName       string `json:"item_name"`
	Count          int    `json:"count"`
	RemainingMoney int    `json:"remaining_money"`
}

// lockForUpdate adds a row lock where the dialect supports it.
// SQLite rejects FOR UPDATE syntax and serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Equip moves one unit of itemCode from charID's inventory into the
// worn set and applies the item's stat modifiers.
func (svc *Service) Equip(ctx context.Context, charID int64, itemCode int, accountID int64) (*EquipResult, error) {
	var res *EquipResult
	txErr := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		char, err := FindCharacterOwned(lockForUpdate(tx), charID, accountID)
		if err != nil {
			return err
		}
		item, err := FindItem(tx, itemCode)
		if err != nil {
			return err
		}
		inv, err := FindInventoryLine(tx, charID, itemCode)
		if err != nil {
			return err
		}
		if inv == nil || inv.Count < 1 {
			return ErrItemNotInInventory
		}
		eq, err := FindEquippedLine(tx, charID, itemCode)
		if err != nil {
			return err
		}
		if eq != nil {
			return ErrAlreadyEquipped
		}

		stat := item.Stat.Data()
		newHealth := char.Health + stat.Health
		newPower := char.Power + stat.Power
		if err := tx.Model(char).Updates(map[string]interface{}{
			"health": newHealth,
			"power":  newPower,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.Equipment{CharID: charID, ItemCode: itemCode}).Error; err != nil {
			return err
		}
		if err := removeFromInventory(tx, inv, 1); err != nil {
			return err
		}

		res = &EquipResult{
			CharacterName: char.Name,
			ItemName:      item.Name,
			HealthDelta:   stat.Health,
			NewHealth:     newHealth,
			PowerDelta:    stat.Power,
			NewPower:      newPower,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	svc.logger.Info("equip",
		zap.Int64("char_id", charID),
		zap.Int("item_code", itemCode))
	return res, nil
}

// Unequip is the inverse of Equip: the worn line is removed, the stat
// modifiers are subtracted, and one unit returns to the inventory.
func (svc *Service) Unequip(ctx context.Context, charID int64, itemCode int, accountID int64) (*EquipResult, error) {
	var res *EquipResult
	txErr := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		char, err := FindCharacterOwned(lockForUpdate(tx), charID, accountID)
		if err != nil {
			return err
		}
		eq, err := FindEquippedLine(tx, charID, itemCode)
		if err != nil {
			return err
		}
		if eq == nil {
			return ErrNotEquipped
		}
		item, err := FindItem(tx, itemCode)
		if err != nil {
			return err
		}

		stat := item.Stat.Data()
		newHealth := char.Health - stat.Health
		newPower := char.Power - stat.Power
		if err := tx.Model(char).Updates(map[string]interface{}{
			"health": newHealth,
			"power":  newPower,
		}).Error; err != nil {
			return err
		}
		if err := tx.Delete(eq).Error; err != nil {
			return err
		}
		if err := addToInventory(tx, charID, itemCode, 1); err != nil {
			return err
		}

		res = &EquipResult{
			CharacterName: char.Name,
			ItemName:      item.Name,
			HealthDelta:   -stat.Health,
			NewHealth:     newHealth,
			PowerDelta:    -stat.Power,
			NewPower:      newPower,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	svc.logger.Info("unequip",
		zap.Int64("char_id", charID),
		zap.Int("item_code", itemCode))
	return res, nil
}

// Buy exchanges money for count units of itemCode at catalog price.
func (svc *Service) Buy(ctx context.Context, charID int64, itemCode, count int, accountID int64) (*TradeResult, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	var res *TradeResult
	txErr := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		char, err := FindCharacterOwned(lockForUpdate(tx), charID, accountID)
		if err != nil {
			return err
		}
		item, err := FindItem(tx, itemCode)
		if err != nil {
			return err
		}

		// A count large enough to wrap price*count can never be
		// affordable; reject it before the arithmetic.
		if item.Price > 0 && count > math.MaxInt/item.Price {
			return ErrInsufficientFunds
		}
		total := item.Price * count
		if char.Money < total {
			return ErrInsufficientFunds
		}
		remaining := char.Money - total
		if err := tx.Model(char).Update("money", remaining).Error; err != nil {
			return err
		}
		if err := addToInventory(tx, charID, itemCode, count); err != nil {
			return err
		}

		res = &TradeResult{ItemName: item.Name, Count: count, RemainingMoney: remaining}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	svc.logger.Info("buy",
		zap.Int64("char_id", charID),
		zap.Int("item_code", itemCode),
		zap.Int("count", count),
		zap.Int("remaining_money", res.RemainingMoney))
	return res, nil
}

// Sell credits a fraction of the catalog price per unit and removes
// the units from the inventory. The per-unit refund is computed first
// in integer arithmetic, then multiplied by count, so settlement
// amounts stay whole at any scale.
func (svc *Service) Sell(ctx context.Context, charID int64, itemCode, count int, accountID int64) (*TradeResult, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	var res *TradeResult
	txErr := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		char, err := FindCharacterOwned(lockForUpdate(tx), charID, accountID)
		if err != nil {
			return err
		}
		item, err := FindItem(tx, itemCode)
		if err != nil {
			return err
		}
		inv, err := FindInventoryLine(tx, charID, itemCode)
		if err != nil {
			return err
		}
		if inv == nil {
			return ErrItemNotInInventory
		}
		if inv.Count < count {
			return ErrInsufficientQuantity
		}

		perUnit := item.Price * svc.game.SellBackPercent / 100
		if perUnit > 0 && count > (math.MaxInt-char.Money)/perUnit {
			return ErrInvalidCount
		}
		remaining := char.Money + perUnit*count
		if err := tx.Model(char).Update("money", remaining).Error; err != nil {
			return err
		}
		if err := removeFromInventory(tx, inv, count); err != nil {
			return err
		}

		res = &TradeResult{ItemName: item.Name, Count: count, RemainingMoney: remaining}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	svc.logger.Info("sell",
		zap.Int64("char_id", charID),
		zap.Int("item_code", itemCode),
		zap.Int("count", count),
		zap.Int("remaining_money", res.RemainingMoney))
	return res, nil
}

// addToInventory upserts the (charID, itemCode) line: increment an
// existing count or create the line.
func addToInventory(tx *gorm.DB, charID int64, itemCode, count int) error {
	inv, err := FindInventoryLine(tx, charID, itemCode)
	if err != nil {
		return err
	}
	if inv == nil {
		return tx.Create(&model.Inventory{CharID: charID, ItemCode: itemCode, Count: count}).Error
	}
	return tx.Model(inv).Update("count", inv.Count+count).Error
}

// removeFromInventory decrements the line, deleting it instead of
// persisting a zero count.
func removeFromInventory(tx *gorm.DB, inv *model.Inventory, count int) error {
	if inv.Count == count {
		return tx.Delete(inv).Error
	}
	return tx.Model(inv).Update("count", inv.Count-count).Error
}
