package models

import (
	"time"

	"github.com/google/uuid"
)

// Account links a User to an external OAuth identity. The same
// (provider_id, account_id) pair can never belong to two users.
type Account struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	ProviderID   string    `json:"providerId" gorm:"not null;uniqueIndex:idx_provider_identity"`
	AccountID    string    `json:"accountId" gorm:"not null;uniqueIndex:idx_provider_identity"`
	AccessToken  string    `json:"-" gorm:"type:text"`
	RefreshToken string    `json:"-" gorm:"type:text"`
	ExpiresAt    int64     `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}
