package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrOpenStore = errors.New("open store failed")
	ErrMigrate   = errors.New("store migration failed")
)
