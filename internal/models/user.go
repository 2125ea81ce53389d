package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"emailVerified" gorm:"default:false"`
	Image         string    `json:"image,omitempty" gorm:"type:text"`
	Password      string    `json:"-"` // bcrypt digest; empty for OAuth-only users
	CreatedAt     time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
