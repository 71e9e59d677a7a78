package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/joonsp/bankcore/internal/domain"
	"github.com/joonsp/bankcore/internal/logging"
	"github.com/joonsp/bankcore/internal/service/movement"
)

type movementService interface {
	Deposit(ctx context.Context, req movement.DepositRequest) (*domain.Deposit, error)
	Transfer(ctx context.Context, req movement.TransferRequest) (*domain.Transfer, error)
	DepositsByAccount(ctx context.Context, accountID int64) ([]domain.Deposit, error)
	DepositsByDateRange(ctx context.Context, start, end time.Time, page, size int) ([]domain.Deposit, int, error)
	TransfersByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error)
	TotalBalance(ctx context.Context) (int64, error)
}

type MovementHandler struct {
	movements       movementService
	defaultPageSize int
	maxPageSize     int
}

func NewMovementHandler(movements movementService, defaultPageSize, maxPageSize int) *MovementHandler {
	return &MovementHandler{
		movements:       movements,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

type depositRequest struct {
	AccountID  int64      `json:"account_id"`
	Amount     int64      `json:"amount"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

func (r depositRequest) Validate() []FieldError {
	var errs []FieldError
	if r.AccountID <= 0 {
		errs = append(errs, FieldError{Field: "account_id", Message: "required"})
	}
	if r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	return errs
}

type transferRequest struct {
	SourceAccountID      int64      `json:"source_account_id"`
	DestinationAccountID int64      `json:"destination_account_id"`
	Amount               int64      `json:"amount"`
	Fee                  int64      `json:"fee,omitempty"`
	OccurredAt           *time.Time `json:"occurred_at,omitempty"`
}

func (r transferRequest) Validate() []FieldError {
	var errs []FieldError
	if r.SourceAccountID <= 0 {
		errs = append(errs, FieldError{Field: "source_account_id", Message: "required"})
	}
	if r.DestinationAccountID <= 0 {
		errs = append(errs, FieldError{Field: "destination_account_id", Message: "required"})
	}
	if r.SourceAccountID > 0 && r.SourceAccountID == r.DestinationAccountID {
		errs = append(errs, FieldError{Field: "destination_account_id", Message: "must differ from source_account_id"})
	}
	if r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	if r.Fee < 0 {
		errs = append(errs, FieldError{Field: "fee", Message: "must not be negative"})
	}
	return errs
}

type depositDTO struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func toDepositDTO(d *domain.Deposit) depositDTO {
	return depositDTO{
		ID:        d.ID,
		AccountID: d.AccountID,
		Amount:    d.Amount,
		Status:    string(d.Status),
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
	}
}

type transferDTO struct {
	ID                   int64     `json:"id"`
	SourceAccountID      int64     `json:"source_account_id"`
	DestinationAccountID int64     `json:"destination_account_id"`
	Amount               int64     `json:"amount"`
	FeeAmount            int64     `json:"fee_amount"`
	DiscountedFee        int64     `json:"discounted_fee"`
	Status               string    `json:"status"`
	Message              string    `json:"message"`
	CreatedAt            time.Time `json:"created_at"`
}

func toTransferDTO(t *domain.Transfer) transferDTO {
	return transferDTO{
		ID:                   t.ID,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Amount:               t.Amount,
		FeeAmount:            t.FeeAmount,
		DiscountedFee:        t.DiscountedFee,
		Status:               string(t.Status),
		Message:              t.Message,
		CreatedAt:            t.CreatedAt,
	}
}

func (h *MovementHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	d, err := h.movements.Deposit(r.Context(), movement.DepositRequest{
		AccountID:      req.AccountID,
		Amount:         req.Amount,
		OccurredAt:     occurredAt,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		log.Warn("deposit failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toDepositDTO(d))
}

func (h *MovementHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	t, err := h.movements.Transfer(r.Context(), movement.TransferRequest{
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		Fee:                  req.Fee,
		OccurredAt:           occurredAt,
		IdempotencyKey:       r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		log.Warn("transfer failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	// An insufficient-funds transfer is a recorded outcome, not an error: it
	// still responds 201 with status "failed" in the body.
	RespondSuccess(w, http.StatusCreated, toTransferDTO(t))
}

func (h *MovementHandler) DepositsByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	deposits, err := h.movements.DepositsByAccount(r.Context(), accountID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("deposit listing failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]depositDTO, len(deposits))
	for i := range deposits {
		dtos[i] = toDepositDTO(&deposits[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *MovementHandler) DepositsByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "start", Message: "must be RFC 3339"}})
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "end", Message: "must be RFC 3339"}})
		return
	}

	page := parsePositiveInt(q.Get("page"), 1)
	size := parsePositiveInt(q.Get("size"), h.defaultPageSize)
	if size > h.maxPageSize {
		size = h.maxPageSize
	}

	deposits, total, err := h.movements.DepositsByDateRange(r.Context(), start, end, page, size)
	if err != nil {
		logging.FromContext(r.Context()).Warn("deposit range listing failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]depositDTO, len(deposits))
	for i := range deposits {
		dtos[i] = toDepositDTO(&deposits[i])
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"deposits": dtos,
		"total":    total,
		"page":     page,
		"size":     size,
	})
}

func (h *MovementHandler) TransfersByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	transfers, err := h.movements.TransfersByAccount(r.Context(), accountID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transfer listing failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transferDTO, len(transfers))
	for i := range transfers {
		dtos[i] = toTransferDTO(&transfers[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *MovementHandler) TotalBalance(w http.ResponseWriter, r *http.Request) {
	total, err := h.movements.TotalBalance(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("total balance failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]int64{"total_balance": total})
}

func parsePositiveInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
