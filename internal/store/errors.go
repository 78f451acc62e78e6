package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrLinkedAccountExists is returned when (user, provider identity) is already linked
	ErrLinkedAccountExists = errors.New("linked account already exists")
)
