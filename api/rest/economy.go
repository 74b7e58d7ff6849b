package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lunaticat/rpgmarket/audit"
	"github.com/lunaticat/rpgmarket/game/economy"
	mw "github.com/lunaticat/rpgmarket/middleware"
	"go.uber.org/zap"
)

// EconomyHandler exposes the equip/unequip and buy/sell operations.
type EconomyHandler struct {
	svc    *economy.Service
	audit  *audit.Service
	logger *zap.Logger
}

// NewEconomyHandler creates a new EconomyHandler.
func NewEconomyHandler(svc *economy.Service, auditSvc *audit.Service, logger *zap.Logger) *EconomyHandler {
	return &EconomyHandler{svc: svc, audit: auditSvc, logger: logger}
}

type equipRequest struct {
	ItemCode int `json:"item_code" binding:"required"`
}

type tradeRequest struct {
	ItemCode int `json:"item_code" binding:"required"`
	Count    int `json:"count"`
}

func (h *EconomyHandler) logAudit(c *gin.Context, action string, charID int64, req, res interface{}, start time.Time, err error) {
	accountID := mw.GetAccountID(c)
	entry := audit.Entry{
		TraceID:    mw.GetTraceID(c),
		AccountID:  &accountID,
		CharID:     &charID,
		Action:     action,
		Request:    req,
		Response:   res,
		IP:         c.ClientIP(),
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	h.audit.Log(entry)
}

// Equip handles POST /api/equip/:char_id.
func (h *EconomyHandler) Equip(c *gin.Context) {
	charID, ok := parseCharID(c)
	if !ok {
		return
	}

	var req equipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	res, err := h.svc.Equip(c.Request.Context(), charID, req.ItemCode, mw.GetAccountID(c))
	h.logAudit(c, "equip", charID, req, res, start, err)
	if err != nil {
		writeEngineError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

// Unequip handles POST /api/unEquip/:char_id.
func (h *EconomyHandler) Unequip(c *gin.Context) {
	charID, ok := parseCharID(c)
	if !ok {
		return
	}

	var req equipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	res, err := h.svc.Unequip(c.Request.Context(), charID, req.ItemCode, mw.GetAccountID(c))
	h.logAudit(c, "unequip", charID, req, res, start, err)
	if err != nil {
		writeEngineError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

// Buy handles POST /api/buy/:char_id.
func (h *EconomyHandler) Buy(c *gin.Context) {
	charID, ok := parseCharID(c)
	if !ok {
		return
	}

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	res, err := h.svc.Buy(c.Request.Context(), charID, req.ItemCode, req.Count, mw.GetAccountID(c))
	h.logAudit(c, "buy", charID, req, res, start, err)
	if err != nil {
		writeEngineError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

// Sell handles POST /api/sell/:char_id.
func (h *EconomyHandler) Sell(c *gin.Context) {
	charID, ok := parseCharID(c)
	if !ok {
		return
	}

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	res, err := h.svc.Sell(c.Request.Context(), charID, req.ItemCode, req.Count, mw.GetAccountID(c))
	h.logAudit(c, "sell", charID, req, res, start, err)
	if err != nil {
		writeEngineError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}
