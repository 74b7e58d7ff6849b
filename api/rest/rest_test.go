package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lunaticat/rpgmarket/audit"
	"github.com/lunaticat/rpgmarket/cache"
	"github.com/lunaticat/rpgmarket/config"
	"github.com/lunaticat/rpgmarket/game/economy"
	mw "github.com/lunaticat/rpgmarket/middleware"
	"github.com/lunaticat/rpgmarket/model"
	"github.com/lunaticat/rpgmarket/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// testEnv wires the full REST surface against an in-memory DB and a
// local cache, mirroring the production router.
type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	cache  cache.Cache
	router *gin.Engine
	game   config.GameConfig
	sec    config.SecurityConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	game := config.GameConfig{
		StartHealth:     500,
		StartPower:      100,
		StartMoney:      10000,
		FarmMoneyAmount: 100,
		SellBackPercent: 60,
	}
	sec := config.SecurityConfig{
		JWTSecret: "rest-test-secret",
		JWTTTLH:   time.Hour,
	}

	svc := economy.NewService(db, game, logger)
	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(nil) })

	authH := NewAuthHandler(db, c, sec)
	charH := NewCharacterHandler(db, game, logger)
	itemH := NewItemHandler(db, logger)
	ecoH := NewEconomyHandler(svc, auditSvc, logger)
	rankH := NewRankingHandler(db, c, logger)

	r := gin.New()
	r.Use(mw.TraceID())

	api := r.Group("/api")
	api.POST("/sign_up", authH.SignUp)
	api.POST("/sign_in", authH.SignIn)
	api.GET("/char/:char_id", mw.OptionalAuth(sec, c), charH.Detail)
	api.GET("/char/equip/:char_id", charH.Equipped)
	api.GET("/items", itemH.List)
	api.GET("/items/:item_code", itemH.Detail)
	api.POST("/items", itemH.Create)
	api.PATCH("/items/:item_code", itemH.Update)
	api.GET("/ranking/money", rankH.TopMoney)

	authed := api.Group("", mw.Auth(sec, c))
	authed.POST("/char", charH.Create)
	authed.DELETE("/char/:char_id", charH.Delete)
	authed.PATCH("/char/:char_id", charH.FarmMoney)
	authed.GET("/char/inventory/:char_id", charH.Inventory)
	authed.POST("/equip/:char_id", ecoH.Equip)
	authed.POST("/unEquip/:char_id", ecoH.Unequip)
	authed.POST("/buy/:char_id", ecoH.Buy)
	authed.POST("/sell/:char_id", ecoH.Sell)

	return &testEnv{t: t, db: db, cache: c, router: r, game: game, sec: sec}
}

// do performs a JSON request against the test router. An empty token
// sends no Authorization header.
func (env *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// signUpAndIn registers an account and returns a live session token.
func (env *testEnv) signUpAndIn(loginID string) string {
	env.t.Helper()
	w := env.do(http.MethodPost, "/api/sign_up", "", gin.H{
		"login_id":       loginID,
		"name":           "Player " + loginID,
		"password":       "secret99",
		"password_check": "secret99",
	})
	require.Equal(env.t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/api/sign_in", "", gin.H{
		"login_id": loginID,
		"password": "secret99",
	})
	require.Equal(env.t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(env.t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(env.t, token)
	return token
}

// createCharacter makes a character via the API and returns its id.
func (env *testEnv) createCharacter(token, name string) int64 {
	env.t.Helper()
	w := env.do(http.MethodPost, "/api/char", token, gin.H{"name": name})
	require.Equal(env.t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(env.t, w)
	return int64(body["char_id"].(float64))
}

// seedItem inserts a catalog item directly.
func (env *testEnv) seedItem(name string, health, power, price int) int {
	env.t.Helper()
	item := &model.Item{
		Name:  name,
		Stat:  datatypes.NewJSONType(model.ItemStat{Health: health, Power: power}),
		Price: price,
	}
	require.NoError(env.t, env.db.Create(item).Error)
	return item.Code
}
