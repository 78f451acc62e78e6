package services

import "errors"

var (
	ErrInvalidState    = errors.New("invalid or forged state")
	ErrExpiredState    = errors.New("state expired")
	ErrNotLinked       = errors.New("no mailbox is linked")
	ErrSyncInProgress  = errors.New("sync already in progress for this mailbox")
	ErrMessageNotFound = errors.New("message not found")
)

func syncLeaseKey(accountID string) string {
	return "sync:" + accountID
}

func stateLeaseKey(stateID string) string {
	return "state:" + stateID
}
