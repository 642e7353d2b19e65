package domain

import "errors"

var (
	// Capture errors
	ErrUnreadableImage     = errors.New("image could not be decoded")
	ErrDuplicateReference  = errors.New("reference id already submitted")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Reconciliation errors
	ErrNoStatementData = errors.New("no statement data available")
	ErrRunNotFound     = errors.New("reconciliation run not found")
)
