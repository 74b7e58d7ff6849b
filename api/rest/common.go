package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lunaticat/rpgmarket/game/economy"
	mw "github.com/lunaticat/rpgmarket/middleware"
	"go.uber.org/zap"
)

// parseCharID reads the :char_id path parameter. IDs must be positive.
func parseCharID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("char_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid char_id"})
		return 0, false
	}
	return id, true
}

// parseItemCode reads the :item_code path parameter.
func parseItemCode(c *gin.Context) (int, bool) {
	code, err := strconv.Atoi(c.Param("item_code"))
	if err != nil || code <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item_code"})
		return 0, false
	}
	return code, true
}

// writeEngineError maps engine errors to HTTP responses. Unclassified
// failures are logged with the trace id and surface as a generic 500;
// storage detail never reaches the client.
func writeEngineError(c *gin.Context, log *zap.Logger, err error) {
	if e, ok := economy.AsError(err); ok {
		c.JSON(e.Status, gin.H{"error": e.Message})
		return
	}
	log.Error("internal error",
		zap.Error(err),
		zap.String("trace_id", mw.GetTraceID(c)),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
