package service

import (
	"context"
	"strings"

	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	balancePageSize = 100
	balanceMaxPages = 50
)

type BalanceAPI interface {
	ListDeposits(ctx context.Context, token string) ([]models.Deposit, error)
	ListWithdrawals(ctx context.Context, token string, page, limit int) (models.WithdrawalPage, error)
}

// BalanceService derives the payout balance shown on the dashboard. It is a
// display value recomputed on every call.
type BalanceService struct {
	api BalanceAPI
}

func NewBalanceService(api BalanceAPI) *BalanceService {
	return &BalanceService{api: api}
}

func (s *BalanceService) GetBalance(ctx context.Context, token string) (models.Balance, error) {
	balance, _, err := s.Snapshot(ctx, token)
	return balance, err
}

// Snapshot fetches deposits and withdrawals together and returns the derived
// balance along with the withdrawal list it was computed from.
func (s *BalanceService) Snapshot(ctx context.Context, token string) (models.Balance, []models.Withdrawal, error) {
	var (
		deposits    []models.Deposit
		withdrawals []models.Withdrawal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deposits, err = s.api.ListDeposits(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		withdrawals, err = s.allWithdrawals(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Balance{}, nil, err
	}

	return ComputeBalance(deposits, withdrawals), withdrawals, nil
}

// allWithdrawals walks the pages until the reported total is reached or a
// page adds nothing new. Rows are deduplicated by id so an upstream that
// ignores the page parameter is not counted twice.
func (s *BalanceService) allWithdrawals(ctx context.Context, token string) ([]models.Withdrawal, error) {
	var out []models.Withdrawal
	seen := make(map[string]bool)

	for page := 1; page <= balanceMaxPages; page++ {
		res, err := s.api.ListWithdrawals(ctx, token, page, balancePageSize)
		if err != nil {
			return nil, err
		}

		added := 0
		for _, w := range res.Withdrawals {
			if w.ID != "" && seen[w.ID] {
				continue
			}
			seen[w.ID] = true
			out = append(out, w)
			added++
		}

		if added == 0 || len(out) >= res.Total {
			break
		}
	}
	return out, nil
}

// ComputeBalance is deposits total minus withdrawals total. Only credited
// deposits count; failed and rejected withdrawals never left the account.
func ComputeBalance(deposits []models.Deposit, withdrawals []models.Withdrawal) models.Balance {
	deposited := decimal.Zero
	for _, d := range deposits {
		switch strings.ToLower(d.Status) {
		case "approved", "completed", "confirmed":
			deposited = deposited.Add(d.Amount)
		}
	}

	withdrawn := decimal.Zero
	for _, w := range withdrawals {
		if st := w.Status.Normalized(); st == models.WithdrawalFailed || st == models.WithdrawalRejected {
			continue
		}
		withdrawn = withdrawn.Add(w.Amount)
	}

	return models.Balance{
		Deposited: deposited,
		Withdrawn: withdrawn,
		Available: deposited.Sub(withdrawn),
	}
}
