package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lunaticat/rpgmarket/game/economy"
	"github.com/lunaticat/rpgmarket/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ItemHandler handles item-catalog REST endpoints.
type ItemHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(db *gorm.DB, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{db: db, logger: logger}
}

type itemStatRequest struct {
	Health int `json:"health"`
	Power  int `json:"power"`
}

type createItemRequest struct {
	Name  string          `json:"item_name"  binding:"required,min=1,max=64"`
	Stat  itemStatRequest `json:"item_stat"`
	Price int             `json:"item_price" binding:"gte=0"`
}

// Create handles POST /api/items.
func (h *ItemHandler) Create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := &model.Item{
		Name:  req.Name,
		Stat:  datatypes.NewJSONType(model.ItemStat{Health: req.Stat.Health, Power: req.Stat.Power}),
		Price: req.Price,
	}
	if err := h.db.Create(item).Error; err != nil {
		writeEngineError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

type updateItemRequest struct {
	Name string          `json:"item_name" binding:"required,min=1,max=64"`
	Stat itemStatRequest `json:"item_stat"`
}

// Update handles PATCH /api/items/:item_code.
// The price is immutable; only name and stats can change.
func (h *ItemHandler) Update(c *gin.Context) {
	code, ok := parseItemCode(c)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := economy.FindItem(h.db, code)
	if err != nil {
		writeEngineError(c, h.logger, err)
		return
	}

	item.Name = req.Name
	item.Stat = datatypes.NewJSONType(model.ItemStat{Health: req.Stat.Health, Power: req.Stat.Power})
	if err := h.db.Save(item).Error; err != nil {
		writeEngineError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

type itemListEntry struct {
	Code  int    `json:"item_code"`
	Name  string `json:"item_name"`
	Price int    `json:"item_price"`
}

// List handles GET /api/items: newest codes first.
func (h *ItemHandler) List(c *gin.Context) {
	var items []model.Item
	if err := h.db.Select("code, name, price").Order("code DESC").Find(&items).Error; err != nil {
		writeEngineError(c, h.logger, err)
		return
	}

	entries := make([]itemListEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, itemListEntry{Code: item.Code, Name: item.Name, Price: item.Price})
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// Detail handles GET /api/items/:item_code.
func (h *ItemHandler) Detail(c *gin.Context) {
	code, ok := parseItemCode(c)
	if !ok {
		return
	}

	item, err := economy.FindItem(h.db, code)
	if err != nil {
		writeEngineError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}
