package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is an append-only record of one Q&A turn. Rows are never
// updated after creation.
type ChatMessage struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Message     string    `json:"message" gorm:"type:text;not null"`
	Response    string    `json:"response" gorm:"type:text;not null"`
	ContextUsed string    `json:"contextUsed,omitempty" gorm:"type:text"`
	Language    string    `json:"language" gorm:"size:10;default:en"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime;index"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}
