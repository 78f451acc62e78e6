package models

import (
	"time"
)

// Credential is the OAuth token pair of a linked account
type Credential struct {
	ID              string `gorm:"primaryKey;type:varchar(36)"`
	LinkedAccountID string `gorm:"type:varchar(36);not null;uniqueIndex"`

	// Token storage (should be encrypted at rest in production)
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text;not null"`
	ExpiresAt    time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (Credential) TableName() string {
	return "credentials"
}

// IsExpired reports whether the access token is stale at the given instant
func (c *Credential) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
