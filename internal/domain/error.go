package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Payment reconciliation
	ErrAlreadyProcessed = errors.New("payment attempt already resolved")
	ErrUnknownReference = errors.New("unknown payment reference")

	// Token ledger
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrBelowMinimum        = errors.New("amount below withdrawal minimum")

	// Infrastructure
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrLockNotAcquired    = errors.New("lock not acquired")
)
