package service

import "errors"

var (
	ErrInvalidUserSlot   = errors.New("invalid user slot")
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrLowPriceSynthetic = errors.New("low price is set through max price")
	ErrUnknownPreference = errors.New("unknown preference")
	ErrNoMorePages       = errors.New("no more pages to load")
	ErrLoadInProgress    = errors.New("page load already in progress")
	ErrStaleResponse     = errors.New("search superseded by a newer request")
	ErrVendorNotFound    = errors.New("vendor not found in current results")
	ErrNoVendorSelected  = errors.New("no vendor selected")
	ErrItemNotFound      = errors.New("item not found in menu")
)
