package model

import (
	"time"

	"gorm.io/datatypes"
)

// ItemStat holds the stat modifiers an item grants while equipped.
type ItemStat struct {
	Health int `json:"health"`
	Power  int `json:"power"`
}

// Item is a catalog entry. Characters never own an Item row directly;
// inventory and equipment reference it by Code.
type Item struct {
	Code      int                          `gorm:"primaryKey;autoIncrement" json:"item_code"`
	Name      string                       `gorm:"size:64;not null" json:"item_name"`
	Stat      datatypes.JSONType[ItemStat] `json:"item_stat"`
	Price     int                          `gorm:"not null;default:0" json:"item_price"`
	CreatedAt time.Time                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                    `gorm:"autoUpdateTime" json:"updated_at"`
}
