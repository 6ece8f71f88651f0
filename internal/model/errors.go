package model

import "errors"

// Common errors used across the application
var (
	// Player store errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrDuplicateName  = errors.New("player name already exists")

	// Catalog errors
	ErrItemNotFound = errors.New("item not found")

	// Requisition errors. These abort the purchase transaction; the
	// storage backend guarantees no partial mutation is visible.
	ErrInsufficientFunds  = errors.New("insufficient requisition points")
	ErrInsufficientRenown = errors.New("insufficient renown")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)
