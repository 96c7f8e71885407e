package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserEventLog is an append-only audit trail. It is never read back for
// reward computation, only for observability.
type UserEventLog struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:char(36);index;not null" json:"user_id"`
	EventType   string    `gorm:"size:20" json:"event_type"`
	Description string    `gorm:"type:text" json:"description"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
	Metadata    *string   `gorm:"type:text" json:"metadata"`
}

func (e *UserEventLog) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return nil
}

// NewEventLog builds an entry with optional structured metadata. Marshalling
// failures drop the metadata rather than the event.
func NewEventLog(userID, eventType, description string, metadata map[string]any) *UserEventLog {
	entry := &UserEventLog{
		UserID:      userID,
		EventType:   eventType,
		Description: description,
	}
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			s := string(b)
			entry.Metadata = &s
		}
	}
	return entry
}
