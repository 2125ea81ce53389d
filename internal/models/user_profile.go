package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds the personalization attributes used to tailor
// generated answers. One per user, created together with the User row.
type UserProfile struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex"`
	SoftwareBackground string    `json:"softwareBackground"`
	HardwareBackground string    `json:"hardwareBackground"`
	OperatingSystem    string    `json:"operatingSystem" gorm:"size:100"`
	GPUHardware        string    `json:"gpuHardware"`
	ExperienceLevel    string    `json:"experienceLevel" gorm:"size:50;default:beginner"`
	PreferredLanguage  string    `json:"preferredLanguage" gorm:"size:10;default:en"`
	CreatedAt          time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}
