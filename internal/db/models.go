package db

import (
	"gorm.io/gorm"
)

// Transition is one recorded workflow state change. The sheet stays the
// source of truth for current status; this table is an append-only local
// record of who moved what, and when.
type Transition struct {
	gorm.Model
	AssetCode  string `json:"asset_code" gorm:"column:asset_code;index;not null"`
	FromStatus string `json:"from_status" gorm:"not null"`
	ToStatus   string `json:"to_status" gorm:"not null;index"`
	Actor      string `json:"actor" gorm:"index"`
	Channel    string `json:"channel"`
	ThreadTS   string `json:"thread_ts" gorm:"column:thread_ts"`
}
