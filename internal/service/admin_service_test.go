package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/mdflamingo/paydesk/internal/payapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adminUser = models.Identity{UserID: "a1", Role: "admin", Token: "admin-tok"}

func sampleWithdrawals() []models.Withdrawal {
	return []models.Withdrawal{
		{
			ID:            "w-1",
			User:          models.WithdrawalUser{ID: "u1", Email: "alice@example.com", Name: "Alice Doe"},
			Amount:        dec("50"),
			WalletAddress: tronAddress,
			Network:       "TRC20",
			Status:        models.WithdrawalPending,
		},
		{
			ID:                "w-2",
			User:              models.WithdrawalUser{ID: "u2", Email: "bob@example.com", Name: "Bob Roe"},
			Amount:            dec("75"),
			WalletAddress:     "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
			Network:           "ERC20",
			Status:            models.WithdrawalProcessing,
			NowpaymentsStatus: "finished",
		},
		{
			ID:            "w-3",
			User:          models.WithdrawalUser{ID: "u1", Email: "alice@example.com", Name: "Alice Doe"},
			Amount:        dec("20"),
			WalletAddress: tronAddress,
			Network:       "TRC20",
			Status:        models.WithdrawalFailed,
		},
	}
}

func TestAdminApprove_RefreshesListAndBalanceOnce(t *testing.T) {
	api := &fakeAPI{withdrawals: sampleWithdrawals(), balance: models.AdminBalance{Amount: dec("1200")}}
	journal := &memJournal{}
	svc := NewAdminService(api, journal, "usdttrc20")

	view, err := svc.Approve(context.Background(), adminUser, "w-1", models.AdminListQuery{Page: 1, Limit: 20})
	require.NoError(t, err)

	calls := api.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "WithdrawalAction:approve", calls[0])
	assert.ElementsMatch(t, []string{"ListWithdrawals", "AdminBalance:usdttrc20"}, calls[1:])

	require.NotNil(t, view.Balance)
	assert.True(t, view.Balance.Amount.Equal(dec("1200")))
	assert.Equal(t, "usdttrc20", view.Balance.Currency)
	assert.Len(t, view.Withdrawals, 3)
	require.NotNil(t, view.Updated)
	assert.Equal(t, "w-1", view.Updated.ID)
	assert.Equal(t, "Processing", view.Updated.Badge)

	require.Len(t, journal.actions, 1)
	assert.Equal(t, ActionApprove, journal.actions[0].Action)
	assert.Equal(t, "a1", journal.actions[0].AdminID)
	assert.Equal(t, "ok", journal.actions[0].Outcome)
}

func TestAdminReject_RequiresReason(t *testing.T) {
	api := &fakeAPI{}
	svc := NewAdminService(api, &memJournal{}, "usdttrc20")

	_, err := svc.Reject(context.Background(), adminUser, "w-1", "   ", models.AdminListQuery{})

	assert.Equal(t, "A rejection reason is required", validationMessage(t, err))
	assert.Empty(t, api.Calls())
}

func TestAdminReject_SendsReason(t *testing.T) {
	api := &fakeAPI{withdrawals: sampleWithdrawals()}
	journal := &memJournal{}
	svc := NewAdminService(api, journal, "usdttrc20")

	_, err := svc.Reject(context.Background(), adminUser, "w-1", " address flagged ", models.AdminListQuery{})
	require.NoError(t, err)

	assert.Equal(t, "address flagged", api.actionReason)
	require.Len(t, journal.actions, 1)
	assert.Equal(t, "address flagged", journal.actions[0].Reason)
}

func TestAdminAction_UpstreamErrorSkipsRefresh(t *testing.T) {
	api := &fakeAPI{actionErr: &payapi.APIError{StatusCode: 409, Message: "Withdrawal already processed"}}
	journal := &memJournal{}
	svc := NewAdminService(api, journal, "usdttrc20")

	_, err := svc.Retry(context.Background(), adminUser, "w-2", models.AdminListQuery{})

	var apiErr *payapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Withdrawal already processed", apiErr.Message)
	assert.Equal(t, []string{"WithdrawalAction:retry"}, api.Calls())

	require.Len(t, journal.actions, 1)
	assert.Contains(t, journal.actions[0].Outcome, "Withdrawal already processed")
}

func TestAdminAction_EmptyID(t *testing.T) {
	api := &fakeAPI{}
	svc := NewAdminService(api, &memJournal{}, "usdttrc20")

	_, err := svc.CheckStatus(context.Background(), adminUser, "", models.AdminListQuery{})
	assert.True(t, IsValidation(err))
	assert.Empty(t, api.Calls())
}

func TestAdminProcessPending(t *testing.T) {
	api := &fakeAPI{withdrawals: sampleWithdrawals()}
	journal := &memJournal{}
	svc := NewAdminService(api, journal, "usdttrc20")

	view, err := svc.ProcessPending(context.Background(), adminUser, models.AdminListQuery{})
	require.NoError(t, err)

	require.NotNil(t, view.Processed)
	assert.Equal(t, 3, *view.Processed)
	assert.Len(t, api.Calls(), 3)
	require.Len(t, journal.actions, 1)
	assert.Equal(t, ActionProcessPending, journal.actions[0].Action)
}

func TestAdminList_FiltersPage(t *testing.T) {
	api := &fakeAPI{withdrawals: sampleWithdrawals()}
	svc := NewAdminService(api, &memJournal{}, "usdttrc20")

	view, err := svc.List(context.Background(), adminUser.Token, models.AdminListQuery{Status: "pending"})
	require.NoError(t, err)

	require.Len(t, view.Withdrawals, 1)
	assert.Equal(t, "w-1", view.Withdrawals[0].ID)
	assert.Equal(t, "Pending", view.Withdrawals[0].Badge)
	assert.True(t, view.Withdrawals[0].Actionable)
	assert.Equal(t, 3, view.Total)
	assert.Nil(t, view.Balance)
}

func TestAdminBalance_DefaultsCurrency(t *testing.T) {
	api := &fakeAPI{}
	svc := NewAdminService(api, &memJournal{}, "usdttrc20")

	b, err := svc.Balance(context.Background(), adminUser.Token, "")
	require.NoError(t, err)
	assert.Equal(t, "usdttrc20", b.Currency)

	_, err = svc.Balance(context.Background(), adminUser.Token, "btc")
	require.NoError(t, err)
	assert.Equal(t, []string{"AdminBalance:usdttrc20", "AdminBalance:btc"}, api.Calls())
}

func TestWithBadge_TerminalRowsNotActionable(t *testing.T) {
	done := withBadge(models.Withdrawal{ID: "w-9", Status: models.WithdrawalCompleted})
	failed := withBadge(models.Withdrawal{ID: "w-8", Status: models.WithdrawalFailed})
	rejected := withBadge(models.Withdrawal{ID: "w-7", Status: models.WithdrawalStatus("Rejected")})

	assert.False(t, done.Actionable)
	assert.True(t, failed.Actionable)
	assert.False(t, rejected.Actionable)
	assert.Equal(t, "Rejected", rejected.Badge)
}

func TestAdminApprove_RefreshFailureStillSucceeds(t *testing.T) {
	api := &fakeAPI{withdrawals: sampleWithdrawals(), refreshErr: fmt.Errorf("%w: GET /api/withdrawals: reset", payapi.ErrTransport)}
	journal := &memJournal{}
	svc := NewAdminService(api, journal, "usdttrc20")

	view, err := svc.Approve(context.Background(), adminUser, "w-1", models.AdminListQuery{})
	require.NoError(t, err)

	assert.True(t, view.RefreshFailed)
	assert.Nil(t, view.Balance)
	require.NotNil(t, view.Updated)
	assert.Equal(t, "w-1", view.Updated.ID)
	require.Len(t, journal.actions, 1)
	assert.Equal(t, "ok", journal.actions[0].Outcome)
}

func TestAdminProcessPending_RefreshFailureStillSucceeds(t *testing.T) {
	api := &fakeAPI{refreshErr: fmt.Errorf("%w: reset", payapi.ErrTransport)}
	svc := NewAdminService(api, &memJournal{}, "usdttrc20")

	view, err := svc.ProcessPending(context.Background(), adminUser, models.AdminListQuery{})
	require.NoError(t, err)

	assert.True(t, view.RefreshFailed)
	require.NotNil(t, view.Processed)
	assert.Equal(t, 3, *view.Processed)
}

func TestFilterWithdrawals(t *testing.T) {
	ws := append(sampleWithdrawals(), models.Withdrawal{ID: "w-4", Status: models.WithdrawalStatus("Processing")})

	tests := []struct {
		name   string
		status string
		search string
		want   []string
	}{
		{"all", "all", "", []string{"w-1", "w-2", "w-3", "w-4"}},
		{"empty status", "", "", []string{"w-1", "w-2", "w-3", "w-4"}},
		{"by status", "failed", "", []string{"w-3"}},
		{"by email", "", "ALICE@", []string{"w-1", "w-3"}},
		{"by name", "", "bob roe", []string{"w-2"}},
		{"by address prefix", "", "0x71c7", []string{"w-2"}},
		{"by network", "", "trc20", []string{"w-1", "w-3"}},
		{"by id", "", "w-2", []string{"w-2"}},
		{"by id prefix", "", "w-", []string{"w-1", "w-2", "w-3", "w-4"}},
		{"status and search", "pending", "alice", []string{"w-1"}},
		{"no match", "", "nobody", []string{}},
		{"mixed case upstream status", "processing", "", []string{"w-2", "w-4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterWithdrawals(ws, tt.status, tt.search)
			ids := make([]string, 0, len(got))
			for _, w := range got {
				ids = append(ids, w.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestAdminActions_ClampsLimit(t *testing.T) {
	journal := &memJournal{}
	for i := 0; i < 60; i++ {
		journal.actions = append(journal.actions, models.AdminAction{Action: ActionApprove})
	}
	svc := NewAdminService(&fakeAPI{}, journal, "usdttrc20")

	got, err := svc.Actions(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, 50)

	got, err = svc.Actions(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
