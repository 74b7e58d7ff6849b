package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lunaticat/rpgmarket/config"
	"github.com/lunaticat/rpgmarket/game/economy"
	mw "github.com/lunaticat/rpgmarket/middleware"
	"github.com/lunaticat/rpgmarket/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CharacterHandler handles character REST endpoints.
type CharacterHandler struct {
	db     *gorm.DB
	game   config.GameConfig
	logger *zap.Logger
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(db *gorm.DB, game config.GameConfig, logger *zap.Logger) *CharacterHandler {
	return &CharacterHandler{db: db, game: game, logger: logger}
}

type createCharacterRequest struct {
	Name string `json:"name" binding:"required,min=1,max=32"`
}

// Create handles POST /api/char.
func (h *CharacterHandler) Create(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	char := &model.Character{
		AccountID: accountID,
		Name:      req.Name,
		Health:    h.game.StartHealth,
		Power:     h.game.StartPower,
		Money:     h.game.StartMoney,
	}
	if err := h.db.Create(char).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "character name already taken"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "character created",
		"char_id": char.ID,
	})
}

// Detail handles GET /api/char/:char_id. The route uses optional
// auth: the owner additionally sees the character's money.
func (h *CharacterHandler) Detail(c *gin.Context) {
	charID, ok := parseCharID(c)
	if !ok {
		return
	}

	char, err := economy.FindCharacterPublic(h.db, charID)
	if err != nil {
		writeEngineError(c, h.logger, err)
		return
	}

	accountID := mw.GetAccountID(c)
	if accountID == char.AccountID {
		c.JSON(http.StatusOK, gin.H{
			"name":   char.Name,
			"health": char.Health,
			"power":  char.Power,
			"money":  char.Money,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":   char.Name,
		"health": char.Health,
		"power":  char.Power,
	})
}

// Delete handles DELETE /api/char/:char_id.
func (h *CharacterHandler) Delete(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	charID, ok := parseCharID(c)
	if !ok {
		return
	}

	char, err := economy.FindCharacterOwned(h.db, charID, accountID)
	if err != nil {
		writeEngineError(c, h.logger, err)
		return
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("char_id = ?", charID).Delete(&model.Inventory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("char_id = ?", charID).Delete(&model.Equipment{}).Error; err != nil {
			return err
		}
		return tx.Delete(char).Error
	}); err != nil {
		writeEngineError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("character %s deleted", char.Name),
	})
}

type inventoryEntry struct {
	ItemCode int    `json:"item_code"`
	ItemName string `json:"item_name"`
	Count    int    `json:"count"`
}

// Inventory handles GET /api/char/inventory/:char_id.
func (h *CharacterHandler) Inventory(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	charID, ok := parseCharID(c)
	if !ok {
		return
	}

	if _, err := economy.FindCharacterOwned(h.db, charID, accountID); err != nil {
		writeEngineError(c, h.logger, err)
		return
	}

	var lines []model.Inventory
	if err := h.db.Where("char_id = ?", charID).Order("item_code").Find(&lines).Error; err != nil {
		writeEngineError(c, h.logger, err)
		return
	}

	entries := make([]inventoryEntry, 0, len(lines))
	names := h.itemNames(itemCodesOfInventory(lines))
	for _, line := range lines {
		entries = append(entries, inventoryEntry{
			ItemCode: line.ItemCode,
			ItemName: names[line.ItemCode],
			Count:    line.Count,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

type equippedEntry struct {
	ItemCode int    `json:"item_code"`
	ItemName string `json:"item_name"`
}

// Equipped handles GET /api/char/equip/:char_id. No auth: the worn
// set is public information.
func (h *CharacterHandler) Equipped(c *gin.Context) {
	charID, ok := parseCharID(c)
	if !ok {
		return
	}

	if _, err := economy.FindCharacterPublic(h.db, charID); err != nil {
		writeEngineError(c, h.logger, err)
		return
	}

	var lines []model.Equipment
	if err := h.db.Where("char_id = ?", charID).Order("item_code").Find(&lines).Error; err != nil {
		writeEngineError(c, h.logger, err)
		return
	}

	codes := make([]int, 0, len(lines))
	for _, line := range lines {
		codes = append(codes, line.ItemCode)
	}
	names := h.itemNames(codes)

	entries := make([]equippedEntry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, equippedEntry{ItemCode: line.ItemCode, ItemName: names[line.ItemCode]})
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// FarmMoney handles PATCH /api/char/:char_id: a fixed money grant.
func (h *CharacterHandler) FarmMoney(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	charID, ok := parseCharID(c)
	if !ok {
		return
	}

	var newMoney int
	err := h.db.Transaction(func(tx *gorm.DB) error {
		char, err := economy.FindCharacterOwned(tx, charID, accountID)
		if err != nil {
			return err
		}
		newMoney = char.Money + h.game.FarmMoneyAmount
		return tx.Model(char).Update("money", newMoney).Error
	})
	if err != nil {
		writeEngineError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("gained %d gold, now %d gold", h.game.FarmMoneyAmount, newMoney),
		"money":   newMoney,
	})
}

func itemCodesOfInventory(lines []model.Inventory) []int {
	codes := make([]int, 0, len(lines))
	for _, line := range lines {
		codes = append(codes, line.ItemCode)
	}
	return codes
}

// itemNames resolves catalog names for a set of item codes.
func (h *CharacterHandler) itemNames(codes []int) map[int]string {
	names := make(map[int]string, len(codes))
	if len(codes) == 0 {
		return names
	}
	var items []model.Item
	if err := h.db.Select("code, name").Where("code IN ?", codes).Find(&items).Error; err != nil {
		h.logger.Error("item name lookup failed", zap.Error(err), zap.Ints("codes", codes))
		return names
	}
	for _, item := range items {
		names[item.Code] = item.Name
	}
	return names
}
