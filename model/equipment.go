package model

import "time"

// Equipment is one worn item. The composite unique index forbids
// equipping the same item twice on the same character; equipping
// consumes exactly one inventory unit, so there is no count column.
type Equipment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CharID    int64     `gorm:"uniqueIndex:idx_equipment_char_item;not null" json:"char_id"`
	ItemCode  int       `gorm:"uniqueIndex:idx_equipment_char_item;not null" json:"item_code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
