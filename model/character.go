package model

import "time"

// Character represents a player's in-game character.
// Health and Power always equal the base values plus the stat
// modifiers of every currently equipped item.
type Character struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID int64     `gorm:"index:idx_char_account;not null" json:"account_id"`
	Name      string    `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Health    int       `gorm:"not null" json:"health"`
	Power     int       `gorm:"not null" json:"power"`
	Money     int       `gorm:"not null;default:0" json:"money"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
