package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrAccountNotFound            = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrSourceAccountNotFound      = &AppError{http.StatusUnprocessableEntity, "SOURCE_ACCOUNT_NOT_FOUND", "Source account not found"}
	ErrDestinationAccountNotFound = &AppError{http.StatusUnprocessableEntity, "DESTINATION_ACCOUNT_NOT_FOUND", "Destination account not found"}
	ErrMemberNotFound             = &AppError{http.StatusUnprocessableEntity, "MEMBER_NOT_FOUND", "Member not found"}
	ErrSelfTransfer               = &AppError{http.StatusUnprocessableEntity, "SELF_TRANSFER_NOT_ALLOWED", "Source and destination must differ"}
	ErrAccountClosed              = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_CLOSED", "Account is closed"}
	ErrAmountOverflow             = &AppError{http.StatusUnprocessableEntity, "AMOUNT_OVERFLOW", "Balance would overflow"}
	ErrAccountExists              = &AppError{http.StatusConflict, "ACCOUNT_ALREADY_EXISTS", "Account number already in use"}
	ErrVersionConflict            = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Resource was modified concurrently, please retry"}
	ErrInvalidAmount              = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
)
