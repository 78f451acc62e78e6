package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RawPayload holds the provider's message detail response byte for byte
type RawPayload []byte

// Value implements the driver.Valuer interface for database storage
func (p RawPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil //nolint:nilnil // nil driver.Value represents SQL NULL
	}
	return []byte(p), nil
}

// Scan implements the sql.Scanner interface for database retrieval
func (p *RawPayload) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append(RawPayload(nil), v...)
	case string:
		*p = RawPayload(v)
	default:
		return fmt.Errorf("failed to scan RawPayload value: %T", value)
	}
	return nil
}

// MarshalJSON emits the payload as embedded JSON when it is valid JSON
func (p RawPayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	if json.Valid(p) {
		return p, nil
	}
	return json.Marshal(string(p))
}

// SyncedMessage is a remote message mirrored into local storage.
// Rows are append-only; (LinkedAccountID, ProviderMessageID) is the dedup key.
type SyncedMessage struct {
	ID                string     `gorm:"primaryKey;type:varchar(36)"                                                                                        json:"id"`
	LinkedAccountID   string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_synced_account_message,priority:1;index:idx_synced_account_received,priority:1" json:"linked_account_id"`
	ProviderMessageID string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_synced_account_message,priority:2"                                       json:"provider_message_id"`
	ThreadID          string     `gorm:"type:varchar(255);index"                                                                                            json:"thread_id"`
	ReceivedAt        time.Time  `gorm:"not null;index:idx_synced_account_received,priority:2"                                                              json:"received_at"`
	Snippet           string     `gorm:"type:text"                                                                                                          json:"snippet"`
	RawPayload        RawPayload `json:"raw_payload"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (SyncedMessage) TableName() string {
	return "synced_messages"
}
