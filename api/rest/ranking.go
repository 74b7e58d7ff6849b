package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lunaticat/rpgmarket/cache"
	"github.com/lunaticat/rpgmarket/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rankingMoneyKey = "ranking:money"

const defaultRankingLimit = 10
const maxRankingLimit = 100

// RankingHandler serves the money leaderboard. Entries live in the
// cache's sorted set, refreshed periodically from the database; when
// the set is empty the handler falls back to the database directly.
type RankingHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(db *gorm.DB, c cache.Cache, logger *zap.Logger) *RankingHandler {
	return &RankingHandler{db: db, cache: c, logger: logger}
}

type rankingEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Money int    `json:"money"`
}

// Refresh rebuilds the leaderboard sorted set from the database.
// The key is dropped first so characters deleted since the last
// refresh do not linger; a read hitting the brief gap falls back to
// the database.
func (h *RankingHandler) Refresh(ctx context.Context) error {
	var chars []model.Character
	err := h.db.WithContext(ctx).
		Select("name, money").
		Order("money DESC").
		Limit(maxRankingLimit).
		Find(&chars).Error
	if err != nil {
		return err
	}
	if err := h.cache.Del(ctx, rankingMoneyKey); err != nil {
		return err
	}
	for _, ch := range chars {
		if err := h.cache.ZAdd(ctx, rankingMoneyKey, float64(ch.Money), ch.Name); err != nil {
			return err
		}
	}
	return nil
}

// TopMoney handles GET /api/ranking/money.
func (h *RankingHandler) TopMoney(c *gin.Context) {
	limit := defaultRankingLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRankingLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	names, err := h.cache.ZRevRange(ctx, rankingMoneyKey, 0, int64(limit-1))
	if err != nil || len(names) == 0 {
		if err != nil {
			h.logger.Warn("ranking cache read failed", zap.Error(err))
		}
		entries, dbErr := h.fromDB(ctx, limit)
		if dbErr != nil {
			writeEngineError(c, h.logger, dbErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entries})
		return
	}

	entries := make([]rankingEntry, 0, len(names))
	for i, name := range names {
		score, err := h.cache.ZScore(ctx, rankingMoneyKey, name)
		if err != nil {
			continue
		}
		entries = append(entries, rankingEntry{Rank: i + 1, Name: name, Money: int(score)})
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// fromDB reads the top characters by money and warms the cache.
func (h *RankingHandler) fromDB(ctx context.Context, limit int) ([]rankingEntry, error) {
	var chars []model.Character
	err := h.db.WithContext(ctx).
		Select("name, money").
		Order("money DESC").
		Limit(limit).
		Find(&chars).Error
	if err != nil {
		return nil, err
	}

	entries := make([]rankingEntry, 0, len(chars))
	for i, ch := range chars {
		entries = append(entries, rankingEntry{Rank: i + 1, Name: ch.Name, Money: ch.Money})
		if err := h.cache.ZAdd(ctx, rankingMoneyKey, float64(ch.Money), ch.Name); err != nil {
			h.logger.Warn("ranking cache warm failed", zap.Error(err))
		}
	}
	return entries, nil
}
