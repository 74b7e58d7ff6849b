package rest

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lunaticat/rpgmarket/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyEquipSellFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.signUpAndIn("player01")
	charID := env.createCharacter(token, "Hero")
	code := env.seedItem("Iron Sword", 0, 12, 250)

	// Buy two swords.
	w := env.do(http.MethodPost, fmt.Sprintf("/api/buy/%d", charID), token, gin.H{"item_code": code, "count": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, env.game.StartMoney-2*250, data["remaining_money"])

	// Equip one: power goes up, inventory drops to one.
	w = env.do(http.MethodPost, fmt.Sprintf("/api/equip/%d", charID), token, gin.H{"item_code": code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, env.game.StartPower+12, data["new_power"])

	var line model.Inventory
	require.NoError(t, env.db.Where("char_id = ? AND item_code = ?", charID, code).First(&line).Error)
	assert.Equal(t, 1, line.Count)

	// Unequip restores the stat and the inventory unit.
	w = env.do(http.MethodPost, fmt.Sprintf("/api/unEquip/%d", charID), token, gin.H{"item_code": code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, env.game.StartPower, data["new_power"])

	// Sell both back at the reduced rate.
	w = env.do(http.MethodPost, fmt.Sprintf("/api/sell/%d", charID), token, gin.H{"item_code": code, "count": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = decodeBody(t, w)["data"].(map[string]interface{})
	perUnit := 250 * env.game.SellBackPercent / 100
	assert.EqualValues(t, env.game.StartMoney-2*250+2*perUnit, data["remaining_money"])
}

func TestBuy_InsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	token := env.signUpAndIn("player01")
	charID := env.createCharacter(token, "Hero")
	code := env.seedItem("Crown", 0, 0, env.game.StartMoney+1)

	w := env.do(http.MethodPost, fmt.Sprintf("/api/buy/%d", charID), token, gin.H{"item_code": code, "count": 1})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var char model.Character
	require.NoError(t, env.db.First(&char, charID).Error)
	assert.Equal(t, env.game.StartMoney, char.Money)
}

func TestBuy_NonPositiveCount(t *testing.T) {
	env := newTestEnv(t)
	token := env.signUpAndIn("player01")
	charID := env.createCharacter(token, "Hero")
	code := env.seedItem("Potion", 10, 0, 30)

	for _, count := range []int{0, -3} {
		w := env.do(http.MethodPost, fmt.Sprintf("/api/buy/%d", charID), token, gin.H{"item_code": code, "count": count})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestEquip_NotInInventory(t *testing.T) {
	env := newTestEnv(t)
	token := env.signUpAndIn("player01")
	charID := env.createCharacter(token, "Hero")
	code := env.seedItem("Sword", 0, 5, 100)

	w := env.do(http.MethodPost, fmt.Sprintf("/api/equip/%d", charID), token, gin.H{"item_code": code})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEquip_AlreadyEquipped(t *testing.T) {
	env := newTestEnv(t)
	token := env.signUpAndIn("player01")
	charID := env.createCharacter(token, "Hero")
	code := env.seedItem("Sword", 0, 5, 100)

	w := env.do(http.MethodPost, fmt.Sprintf("/api/buy/%d", charID), token, gin.H{"item_code": code, "count": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(http.MethodPost, fmt.Sprintf("/api/equip/%d", charID), token, gin.H{"item_code": code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, fmt.Sprintf("/api/equip/%d", charID), token, gin.H{"item_code": code})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEconomy_ForeignCharacter(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signUpAndIn("player01")
	charID := env.createCharacter(owner, "Hero")
	code := env.seedItem("Sword", 0, 5, 100)

	other := env.signUpAndIn("player02")
	for _, path := range []string{"/api/buy/%d", "/api/sell/%d"} {
		w := env.do(http.MethodPost, fmt.Sprintf(path, charID), other, gin.H{"item_code": code, "count": 1})
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	for _, path := range []string{"/api/equip/%d", "/api/unEquip/%d"} {
		w := env.do(http.MethodPost, fmt.Sprintf(path, charID), other, gin.H{"item_code": code})
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}

func TestEconomy_MissingCharacter(t *testing.T) {
	env := newTestEnv(t)
	token := env.signUpAndIn("player01")
	code := env.seedItem("Sword", 0, 5, 100)

	w := env.do(http.MethodPost, "/api/buy/999", token, gin.H{"item_code": code, "count": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEconomy_InvalidItemCodeBody(t *testing.T) {
	env := newTestEnv(t)
	token := env.signUpAndIn("player01")
	charID := env.createCharacter(token, "Hero")

	w := env.do(http.MethodPost, fmt.Sprintf("/api/buy/%d", charID), token, gin.H{"count": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
