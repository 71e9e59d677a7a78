package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joonsp/bankcore/internal/domain"
	"github.com/joonsp/bankcore/internal/service/movement"
)

type fakeMovementService struct {
	depositFn      func(ctx context.Context, req movement.DepositRequest) (*domain.Deposit, error)
	transferFn     func(ctx context.Context, req movement.TransferRequest) (*domain.Transfer, error)
	depositsFn     func(ctx context.Context, accountID int64) ([]domain.Deposit, error)
	depositRangeFn func(ctx context.Context, start, end time.Time, page, size int) ([]domain.Deposit, int, error)
	transfersFn    func(ctx context.Context, accountID int64) ([]domain.Transfer, error)
	totalFn        func(ctx context.Context) (int64, error)
}

func (f *fakeMovementService) Deposit(ctx context.Context, req movement.DepositRequest) (*domain.Deposit, error) {
	return f.depositFn(ctx, req)
}

func (f *fakeMovementService) Transfer(ctx context.Context, req movement.TransferRequest) (*domain.Transfer, error) {
	return f.transferFn(ctx, req)
}

func (f *fakeMovementService) DepositsByAccount(ctx context.Context, accountID int64) ([]domain.Deposit, error) {
	return f.depositsFn(ctx, accountID)
}

func (f *fakeMovementService) DepositsByDateRange(ctx context.Context, start, end time.Time, page, size int) ([]domain.Deposit, int, error) {
	return f.depositRangeFn(ctx, start, end, page, size)
}

func (f *fakeMovementService) TransfersByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error) {
	return f.transfersFn(ctx, accountID)
}

func (f *fakeMovementService) TotalBalance(ctx context.Context) (int64, error) {
	return f.totalFn(ctx)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestDepositHandler_Success(t *testing.T) {
	svc := &fakeMovementService{
		depositFn: func(_ context.Context, req movement.DepositRequest) (*domain.Deposit, error) {
			return &domain.Deposit{
				ID:        1,
				AccountID: req.AccountID,
				Amount:    req.Amount,
				Status:    domain.MovementStatusCompleted,
				Message:   "deposit completed",
				CreatedAt: time.Now().UTC(),
			}, nil
		},
	}
	h := NewMovementHandler(svc, 20, 100)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deposits",
		strings.NewReader(`{"account_id": 7, "amount": 500}`))
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(7), data["account_id"])
	assert.Equal(t, float64(500), data["amount"])
	assert.Equal(t, "completed", data["status"])
}

func TestDepositHandler_ForwardsIdempotencyKey(t *testing.T) {
	var gotKey string
	svc := &fakeMovementService{
		depositFn: func(_ context.Context, req movement.DepositRequest) (*domain.Deposit, error) {
			gotKey = req.IdempotencyKey
			return &domain.Deposit{ID: 1, AccountID: req.AccountID, Amount: req.Amount, Status: domain.MovementStatusCompleted}, nil
		},
	}
	h := NewMovementHandler(svc, 20, 100)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deposits",
		strings.NewReader(`{"account_id": 7, "amount": 500}`))
	req.Header.Set("Idempotency-Key", "abc-123")
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "abc-123", gotKey)
}

func TestDepositHandler_ValidationFailure(t *testing.T) {
	h := NewMovementHandler(&fakeMovementService{}, 20, 100)

	tests := []struct {
		name string
		body string
	}{
		{"missing account", `{"amount": 500}`},
		{"zero amount", `{"account_id": 7, "amount": 0}`},
		{"negative amount", `{"account_id": 7, "amount": -1}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/deposits", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			h.Deposit(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
		})
	}
}

func TestDepositHandler_AccountNotFound(t *testing.T) {
	svc := &fakeMovementService{
		depositFn: func(context.Context, movement.DepositRequest) (*domain.Deposit, error) {
			return nil, domain.ErrAccountNotFound
		},
	}
	h := NewMovementHandler(svc, 20, 100)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deposits",
		strings.NewReader(`{"account_id": 424242, "amount": 500}`))
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "ACCOUNT_NOT_FOUND", resp.Error.Code)
}

func TestTransferHandler_Success(t *testing.T) {
	svc := &fakeMovementService{
		transferFn: func(_ context.Context, req movement.TransferRequest) (*domain.Transfer, error) {
			return &domain.Transfer{
				ID:                   3,
				SourceAccountID:      req.SourceAccountID,
				DestinationAccountID: req.DestinationAccountID,
				Amount:               req.Amount,
				FeeAmount:            req.Fee,
				DiscountedFee:        req.Fee,
				Status:               domain.MovementStatusCompleted,
				Message:              "transfer completed",
			}, nil
		},
	}
	h := NewMovementHandler(svc, 20, 100)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers",
		strings.NewReader(`{"source_account_id": 1, "destination_account_id": 2, "amount": 2000, "fee": 100}`))
	rec := httptest.NewRecorder()

	h.Transfer(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, float64(100), data["fee_amount"])
}

func TestTransferHandler_InsufficientFundsIs201Failed(t *testing.T) {
	svc := &fakeMovementService{
		transferFn: func(_ context.Context, req movement.TransferRequest) (*domain.Transfer, error) {
			return &domain.Transfer{
				ID:                   4,
				SourceAccountID:      req.SourceAccountID,
				DestinationAccountID: req.DestinationAccountID,
				Amount:               req.Amount,
				Status:               domain.MovementStatusFailed,
				Message:              "insufficient funds",
			}, nil
		},
	}
	h := NewMovementHandler(svc, 20, 100)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers",
		strings.NewReader(`{"source_account_id": 1, "destination_account_id": 2, "amount": 999999}`))
	rec := httptest.NewRecorder()

	h.Transfer(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, "a recorded failure is still a created resource")
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "failed", data["status"])
	assert.Equal(t, "insufficient funds", data["message"])
}

func TestTransferHandler_Validation(t *testing.T) {
	h := NewMovementHandler(&fakeMovementService{}, 20, 100)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"same accounts", `{"source_account_id": 5, "destination_account_id": 5, "amount": 100}`, "destination_account_id"},
		{"zero amount", `{"source_account_id": 1, "destination_account_id": 2, "amount": 0}`, "amount"},
		{"negative fee", `{"source_account_id": 1, "destination_account_id": 2, "amount": 100, "fee": -5}`, "fee"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			h.Transfer(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := rec.Body.String()
			resp := decodeResponse(t, rec)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
			assert.Contains(t, body, tc.field)
		})
	}
}

func TestTransferHandler_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"source missing", domain.ErrSourceAccountNotFound, http.StatusUnprocessableEntity, "SOURCE_ACCOUNT_NOT_FOUND"},
		{"destination missing", domain.ErrDestinationAccountNotFound, http.StatusUnprocessableEntity, "DESTINATION_ACCOUNT_NOT_FOUND"},
		{"account closed", domain.ErrAccountClosed, http.StatusUnprocessableEntity, "ACCOUNT_CLOSED"},
		{"overflow", domain.ErrAmountOverflow, http.StatusUnprocessableEntity, "AMOUNT_OVERFLOW"},
		{"version conflict", domain.ErrVersionConflict, http.StatusConflict, "VERSION_CONFLICT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeMovementService{
				transferFn: func(context.Context, movement.TransferRequest) (*domain.Transfer, error) {
					return nil, tc.err
				},
			}
			h := NewMovementHandler(svc, 20, 100)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers",
				strings.NewReader(`{"source_account_id": 1, "destination_account_id": 2, "amount": 100}`))
			rec := httptest.NewRecorder()

			h.Transfer(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestDepositsByDateRangeHandler_ClampsPageSize(t *testing.T) {
	var gotPage, gotSize int
	svc := &fakeMovementService{
		depositRangeFn: func(_ context.Context, _, _ time.Time, page, size int) ([]domain.Deposit, int, error) {
			gotPage, gotSize = page, size
			return nil, 0, nil
		},
	}
	h := NewMovementHandler(svc, 20, 100)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/deposits?start=2026-03-01T00:00:00Z&end=2026-03-02T00:00:00Z&page=2&size=5000", nil)
	rec := httptest.NewRecorder()

	h.DepositsByDateRange(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 100, gotSize)
}

func TestDepositsByDateRangeHandler_BadTimestamps(t *testing.T) {
	h := NewMovementHandler(&fakeMovementService{}, 20, 100)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deposits?start=yesterday&end=2026-03-02T00:00:00Z", nil)
	rec := httptest.NewRecorder()

	h.DepositsByDateRange(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "start")
}

func TestTotalBalanceHandler(t *testing.T) {
	svc := &fakeMovementService{
		totalFn: func(context.Context) (int64, error) { return 123456, nil },
	}
	h := NewMovementHandler(svc, 20, 100)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/balance/total", nil)
	rec := httptest.NewRecorder()

	h.TotalBalance(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(123456), data["total_balance"])
}
