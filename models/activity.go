package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity sources. Anything else earns nothing.
const (
	SourceSteps    = "steps"
	SourceReferral = "referral"
	SourceBonus    = "bonus"
)

// DailyActivity is one append-only ledger entry. Reward and aura amounts are
// computed exactly once when the row is inserted and are never recomputed;
// there is no update or delete path.
type DailyActivity struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:char(36);index;not null" json:"user_id"`
	StepCount      int       `gorm:"default:0" json:"step_count"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
	AmountRewarded float64   `gorm:"default:0" json:"amount_rewarded"`
	ConversionRate float64   `json:"conversion_rate"`
	AuraGained     int       `gorm:"default:0" json:"aura_gained"`
	Source         string    `gorm:"size:50;default:steps" json:"source"`
}

// BeforeCreate assigns the opaque id and defaults the timestamp to now.
func (a *DailyActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	return nil
}
