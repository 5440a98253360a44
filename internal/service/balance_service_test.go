package service

import (
	"context"
	"testing"

	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBalance(t *testing.T) {
	deposits := []models.Deposit{
		{Amount: dec("100"), Status: "approved"},
		{Amount: dec("50.5"), Status: "Completed"},
		{Amount: dec("25"), Status: "confirmed"},
		{Amount: dec("999"), Status: "pending"},
		{Amount: dec("999"), Status: "rejected"},
	}
	withdrawals := []models.Withdrawal{
		{Amount: dec("20"), Status: models.WithdrawalCompleted},
		{Amount: dec("10"), Status: models.WithdrawalPending},
		{Amount: dec("5.25"), Status: models.WithdrawalProcessing},
		{Amount: dec("300"), Status: models.WithdrawalFailed},
		{Amount: dec("300"), Status: models.WithdrawalRejected},
	}

	b := ComputeBalance(deposits, withdrawals)

	assert.True(t, b.Deposited.Equal(dec("175.5")), b.Deposited.String())
	assert.True(t, b.Withdrawn.Equal(dec("35.25")), b.Withdrawn.String())
	assert.True(t, b.Available.Equal(dec("140.25")), b.Available.String())
}

func TestComputeBalance_Empty(t *testing.T) {
	b := ComputeBalance(nil, nil)
	assert.True(t, b.Available.IsZero())
}

func TestBalanceSnapshot_FetchesBothLists(t *testing.T) {
	api := &fakeAPI{
		deposits:    []models.Deposit{{Amount: dec("40"), Status: "approved"}},
		withdrawals: []models.Withdrawal{{ID: "w-1", Amount: dec("15"), Status: models.WithdrawalPending}},
	}
	svc := NewBalanceService(api)

	b, ws, err := svc.Snapshot(context.Background(), "tok")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"ListDeposits", "ListWithdrawals"}, api.Calls())
	assert.True(t, b.Available.Equal(dec("25")))
	require.Len(t, ws, 1)
	assert.Equal(t, "w-1", ws[0].ID)
}

func TestBalanceSnapshot_WalksEveryPage(t *testing.T) {
	api := &fakeAPI{
		deposits: []models.Deposit{{Amount: dec("500"), Status: "approved"}},
		withdrawals: []models.Withdrawal{
			{ID: "w-1", Amount: dec("10"), Status: models.WithdrawalPending},
			{ID: "w-2", Amount: dec("20"), Status: models.WithdrawalCompleted},
			{ID: "w-3", Amount: dec("30"), Status: models.WithdrawalProcessing},
		},
		pageSize: 2,
	}
	svc := NewBalanceService(api)

	b, ws, err := svc.Snapshot(context.Background(), "tok")
	require.NoError(t, err)

	assert.Len(t, ws, 3)
	assert.True(t, b.Withdrawn.Equal(dec("60")), b.Withdrawn.String())
	assert.ElementsMatch(t, []string{"ListDeposits", "ListWithdrawals", "ListWithdrawals"}, api.Calls())
}

// pagedIgnoringAPI answers every page with the same rows and a total larger
// than what it returns.
type pagedIgnoringAPI struct {
	fakeAPI
}

func (p *pagedIgnoringAPI) ListWithdrawals(ctx context.Context, token string, page, limit int) (models.WithdrawalPage, error) {
	p.record("ListWithdrawals")
	return models.WithdrawalPage{Withdrawals: p.withdrawals, Total: 1000}, nil
}

func TestBalanceSnapshot_UpstreamIgnoringPagesCountedOnce(t *testing.T) {
	api := &pagedIgnoringAPI{fakeAPI{
		withdrawals: []models.Withdrawal{{ID: "w-1", Amount: dec("10"), Status: models.WithdrawalPending}},
	}}
	svc := NewBalanceService(api)

	b, _, err := svc.Snapshot(context.Background(), "tok")
	require.NoError(t, err)

	assert.True(t, b.Withdrawn.Equal(dec("10")), b.Withdrawn.String())
	assert.Len(t, api.Calls(), 3)
}

func TestComputeBalance_StatusCaseInsensitive(t *testing.T) {
	b := ComputeBalance(
		[]models.Deposit{{Amount: dec("100"), Status: "approved"}},
		[]models.Withdrawal{
			{Amount: dec("40"), Status: models.WithdrawalStatus("Failed")},
			{Amount: dec("10"), Status: models.WithdrawalStatus("PENDING")},
		},
	)
	assert.True(t, b.Available.Equal(dec("90")), b.Available.String())
}

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		status    models.WithdrawalStatus
		processor string
		want      string
	}{
		{models.WithdrawalPending, "", "Pending"},
		{models.WithdrawalProcessing, "", "Processing"},
		{models.WithdrawalCompleted, "", "Completed"},
		{models.WithdrawalFailed, "", "Failed"},
		{models.WithdrawalRejected, "", "Rejected"},
		{models.WithdrawalProcessing, "finished", "Completed"},
		{models.WithdrawalProcessing, "CONFIRMED", "Completed"},
		{models.WithdrawalPending, "sending", "Processing"},
		{models.WithdrawalPending, "waiting", "Processing"},
		{models.WithdrawalProcessing, "failed", "Failed"},
		{models.WithdrawalProcessing, "expired", "Failed"},
		{models.WithdrawalPending, "partially_paid", "Pending"},
		{models.WithdrawalStatus("Pending"), "", "Pending"},
		{models.WithdrawalStatus("REJECTED"), "", "Rejected"},
		{models.WithdrawalStatus("on_hold"), "", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status)+"/"+tt.processor, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusBadge(tt.status, tt.processor))
		})
	}
}
