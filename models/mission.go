package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mission is a fixed lifetime step-count milestone granting a one-time aura
// bonus on completion. Missions are shared across all users.
type Mission struct {
	ID               string `gorm:"type:char(36);primaryKey" json:"id"`
	Name             string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description      string `gorm:"type:text" json:"description"`
	RequirementSteps int    `gorm:"default:0" json:"requirement_steps"`
	AuraReward       int    `gorm:"default:0" json:"aura_reward"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *Mission) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// UserMission tracks one user's progress on one mission. Every (user, mission)
// pair has exactly one row; completion is one-way and the reward is granted
// once, at the transition.
type UserMission struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	UserID      string     `gorm:"type:char(36);uniqueIndex:idx_user_mission;not null" json:"user_id"`
	MissionID   string     `gorm:"type:char(36);uniqueIndex:idx_user_mission;not null" json:"mission_id"`
	IsCompleted bool       `gorm:"default:false" json:"is_completed"`
	Achieved    *time.Time `json:"achieved"`

	Mission Mission `gorm:"foreignKey:MissionID" json:"mission"`
}

func (um *UserMission) BeforeCreate(tx *gorm.DB) error {
	if um.ID == "" {
		um.ID = uuid.NewString()
	}
	return nil
}
