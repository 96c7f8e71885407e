package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a walkit account. One external identity (email) maps to
// exactly one user, and a user is bound to at most one device.
type User struct {
	ID       string  `gorm:"type:char(36);primaryKey" json:"id"`
	Email    string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name     string  `gorm:"size:100" json:"name"`
	Username string  `gorm:"size:50;uniqueIndex" json:"username"`
	DeviceID *string `gorm:"size:200;uniqueIndex" json:"-"`

	Goal    int `gorm:"default:1000" json:"goal"`
	Balance int `gorm:"default:0" json:"balance"`
	Aura    int `gorm:"default:0" json:"aura"`
	Level   int `gorm:"default:1" json:"level"`

	// InviteCode is generated once at creation and never changes. InvitedBy
	// stores the inviter's invite code and is immutable once set.
	InviteCode string  `gorm:"size:50;uniqueIndex" json:"invite_code"`
	InvitedBy  *string `gorm:"size:50" json:"invited_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Activities []DailyActivity `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Missions   []UserMission   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	EventLogs  []UserEventLog  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// InviteURL is the shareable deep link carrying the user's invite code.
func (u *User) InviteURL() string {
	return fmt.Sprintf("https://walkitapp.com/invite/%s", u.InviteCode)
}

// BeforeCreate assigns the opaque id and the one-time invite code.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.InviteCode == "" {
		u.InviteCode = GenerateInviteCode(u.Email)
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// GenerateInviteCode derives a short random code. The uuid salt keeps codes
// distinct across retries for the same email.
func GenerateInviteCode(email string) string {
	sum := sha256.Sum256([]byte(email + "-" + uuid.NewString()))
	return hex.EncodeToString(sum[:])[:10]
}
