package domain

import "errors"

var (
	ErrNotFound                   = errors.New("not found")
	ErrAccountNotFound            = errors.New("account not found")
	ErrSourceAccountNotFound      = errors.New("source account not found")
	ErrDestinationAccountNotFound = errors.New("destination account not found")
	ErrMemberNotFound             = errors.New("member not found")
	ErrInvalidAmount              = errors.New("amount must be greater than zero")
	ErrSelfTransfer               = errors.New("source and destination must differ")
	ErrAccountClosed              = errors.New("account closed")
	ErrAccountExists              = errors.New("account number already in use")
	ErrAmountOverflow             = errors.New("balance would overflow")
	ErrVersionConflict            = errors.New("optimistic lock conflict")
	ErrInvalidRequest             = errors.New("invalid request")
)
