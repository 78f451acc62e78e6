package models

import (
	"time"
)

// AccountStatus represents whether a linked mailbox can be used for sync
type AccountStatus string

const (
	// AccountStatusActive marks a linked account with a usable credential
	AccountStatusActive AccountStatus = "active"
	// AccountStatusReauthRequired marks a linked account whose grant was rejected upstream
	AccountStatusReauthRequired AccountStatus = "reauth_required"
)

// LinkedAccount is a mailbox linked to a local user through OAuth
type LinkedAccount struct {
	ID               string        `gorm:"primaryKey;type:varchar(36)"                                            json:"id"`
	UserID           string        `gorm:"type:varchar(255);not null;uniqueIndex:idx_linked_user_identity,priority:1" json:"user_id"`
	ProviderIdentity string        `gorm:"type:varchar(320);not null;uniqueIndex:idx_linked_user_identity,priority:2" json:"provider_identity"`
	Status           AccountStatus `gorm:"type:varchar(20);not null;default:active"                               json:"status"`
	LinkedAt         time.Time     `gorm:"not null;index"                                                         json:"linked_at"`
	LastSyncedAt     *time.Time    `json:"last_synced_at,omitempty"`

	Credential *Credential     `gorm:"foreignKey:LinkedAccountID;constraint:OnDelete:CASCADE" json:"-"`
	Messages   []SyncedMessage `gorm:"foreignKey:LinkedAccountID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (LinkedAccount) TableName() string {
	return "linked_accounts"
}

// NeedsReauth reports whether the account must be linked again before it can sync
func (a *LinkedAccount) NeedsReauth() bool {
	return a.Status == AccountStatusReauthRequired
}
