package model

import "time"

// Inventory is one (character, item) stack in a character's bag.
// A row with Count 0 must never persist; it is deleted instead.
type Inventory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CharID    int64     `gorm:"uniqueIndex:idx_inventory_char_item;not null" json:"char_id"`
	ItemCode  int       `gorm:"uniqueIndex:idx_inventory_char_item;not null" json:"item_code"`
	Count     int       `gorm:"not null;default:1" json:"count"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
