package movement

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joonsp/bankcore/internal/domain"
)

func TestValidateDeposit(t *testing.T) {
	tests := []struct {
		name    string
		req     DepositRequest
		wantErr error
	}{
		{
			name: "valid deposit",
			req:  DepositRequest{AccountID: 1, Amount: 500},
		},
		{
			name:    "amount zero",
			req:     DepositRequest{AccountID: 1, Amount: 0},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "amount negative",
			req:     DepositRequest{AccountID: 1, Amount: -500},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateDeposit(tc.req)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateTransfer(t *testing.T) {
	tests := []struct {
		name    string
		req     TransferRequest
		wantErr error
	}{
		{
			name: "valid transfer",
			req:  TransferRequest{SourceAccountID: 1, DestinationAccountID: 2, Amount: 1000},
		},
		{
			name:    "amount zero",
			req:     TransferRequest{SourceAccountID: 1, DestinationAccountID: 2, Amount: 0},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "amount negative",
			req:     TransferRequest{SourceAccountID: 1, DestinationAccountID: 2, Amount: -100},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "same source and destination",
			req:     TransferRequest{SourceAccountID: 7, DestinationAccountID: 7, Amount: 1000},
			wantErr: domain.ErrSelfTransfer,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateTransfer(tc.req)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
