package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joonsp/bankcore/internal/domain"
)

type fakeAccountRepo struct {
	accounts map[int64]*domain.Account
	taken    map[string]bool
	nextID   int64
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: make(map[int64]*domain.Account),
		taken:    make(map[string]bool),
	}
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccountRepo) GetByMemberID(_ context.Context, memberID int64) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range f.accounts {
		if a.MemberID == memberID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	f.nextID++
	account.ID = f.nextID
	f.accounts[account.ID] = account
	f.taken[account.AccountNumber] = true
	return nil
}

func (f *fakeAccountRepo) ExistsByAccountNumber(_ context.Context, accountNumber string) (bool, error) {
	return f.taken[accountNumber], nil
}

func (f *fakeAccountRepo) Close(_ context.Context, id int64, at time.Time) error {
	a, ok := f.accounts[id]
	if !ok || a.DeletedAt != nil {
		return domain.ErrNotFound
	}
	a.DeletedAt = &at
	a.Status = domain.AccountStatusUnregistered
	return nil
}

type fakeMemberChecker struct {
	members map[int64]*domain.Member
}

func (f *fakeMemberChecker) GetByID(_ context.Context, id int64) (*domain.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func TestOpenAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	members := &fakeMemberChecker{members: map[int64]*domain.Member{
		1: {ID: 1, Email: "holder@test.com", Grade: domain.GradeRegular},
	}}
	svc := NewAccountService(repo, members)

	account, err := svc.OpenAccount(context.Background(), 1)

	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.Len(t, account.AccountNumber, 10)
	assert.Equal(t, int64(0), account.Balance)
	assert.Equal(t, int64(0), account.Version)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
}

func TestOpenAccount_MemberNotFound(t *testing.T) {
	svc := NewAccountService(newFakeAccountRepo(), &fakeMemberChecker{members: map[int64]*domain.Member{}})

	_, err := svc.OpenAccount(context.Background(), 99)

	require.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestOpenAccount_NumbersAreUnique(t *testing.T) {
	repo := newFakeAccountRepo()
	members := &fakeMemberChecker{members: map[int64]*domain.Member{
		1: {ID: 1, Email: "holder@test.com", Grade: domain.GradeRegular},
	}}
	svc := NewAccountService(repo, members)

	seen := make(map[string]bool)
	for range 20 {
		account, err := svc.OpenAccount(context.Background(), 1)
		require.NoError(t, err)
		assert.False(t, seen[account.AccountNumber], "duplicate account number %s", account.AccountNumber)
		seen[account.AccountNumber] = true
	}
}

func TestCloseAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	members := &fakeMemberChecker{members: map[int64]*domain.Member{
		1: {ID: 1, Email: "holder@test.com", Grade: domain.GradeRegular},
	}}
	svc := NewAccountService(repo, members)

	account, err := svc.OpenAccount(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.CloseAccount(context.Background(), account.ID))

	got, err := svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, got.Closed())
	assert.NotNil(t, got.DeletedAt)
}

func TestCloseAccount_NotFound(t *testing.T) {
	svc := NewAccountService(newFakeAccountRepo(), &fakeMemberChecker{members: map[int64]*domain.Member{}})

	err := svc.CloseAccount(context.Background(), 424242)

	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
