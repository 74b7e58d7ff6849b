package model

import "time"

// Account represents a player account.
type Account struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	LoginID      string     `gorm:"uniqueIndex;size:32;not null" json:"login_id"`
	Name         string     `gorm:"size:32;not null" json:"name"`
	PasswordHash string     `gorm:"size:64;not null" json:"-"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	LastLoginIP  string     `gorm:"size:45" json:"last_login_ip"`
}
