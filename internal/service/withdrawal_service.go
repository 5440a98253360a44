package service

import (
	"context"
	"strings"

	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type WithdrawalAPI interface {
	BalanceAPI
	CreateWithdrawal(ctx context.Context, token string, body models.CreateWithdrawalBody) (models.Withdrawal, error)
}

type WithdrawalService struct {
	api      WithdrawalAPI
	balances *BalanceService
	submit   submitter
}

func NewWithdrawalService(api WithdrawalAPI, guard SubmitGuard, journal Journal) *WithdrawalService {
	return &WithdrawalService{
		api:      api,
		balances: NewBalanceService(api),
		submit:   submitter{guard: guard, journal: journal},
	}
}

// ValidateWithdrawal applies the form rules in the order the form shows them.
// It never talks to the network.
func ValidateWithdrawal(req models.WithdrawalRequest, balance decimal.Decimal) error {
	if err := validateWithdrawalForm(req); err != nil {
		return err
	}

	fee, _ := NetworkFee(req.Network)
	total := req.Amount.Add(fee)
	if total.GreaterThan(balance) {
		return invalid("Insufficient balance. You need $%s (including $%s network fee)", total.StringFixed(2), fee.StringFixed(2))
	}
	return nil
}

// validateWithdrawalForm covers every rule that does not need the balance.
func validateWithdrawalForm(req models.WithdrawalRequest) error {
	if req.Amount.LessThan(MinWithdrawal) {
		return invalid("Minimum withdrawal amount is $%s", MinWithdrawal.String())
	}
	if len(strings.TrimSpace(req.WalletAddress)) < MinAddressLength {
		return invalid("Please enter a valid wallet address")
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	if _, ok := NetworkFee(req.Network); !ok {
		return invalid("Unsupported network %q", req.Network)
	}
	if !coinOnNetwork(req.Coin, req.Network) {
		return invalid("%s is not available on %s", strings.ToUpper(req.Coin), strings.ToUpper(req.Network))
	}
	return nil
}

func (s *WithdrawalService) List(ctx context.Context, token string) (models.UserWithdrawalsView, error) {
	balance, withdrawals, err := s.balances.Snapshot(ctx, token)
	if err != nil {
		return models.UserWithdrawalsView{}, err
	}
	return models.UserWithdrawalsView{Balance: balance, Withdrawals: withBadges(withdrawals)}, nil
}

func (s *WithdrawalService) Quote(ctx context.Context, token string, amount decimal.Decimal, network string) (models.WithdrawalQuote, error) {
	balance, err := s.balances.GetBalance(ctx, token)
	if err != nil {
		return models.WithdrawalQuote{}, err
	}
	return Quote(amount, network, balance.Available)
}

// Submit validates the form against a fresh balance, posts it and returns
// the refreshed balance and withdrawal list the cleared form is shown with.
// Once the payments API has accepted the withdrawal Submit never fails; a
// failed refresh only sets RefreshFailed.
func (s *WithdrawalService) Submit(ctx context.Context, user models.Identity, req models.WithdrawalRequest) (models.UserWithdrawalsView, error) {
	req.Amount = req.Amount.Round(8)

	if err := validateWithdrawalForm(req); err != nil {
		return models.UserWithdrawalsView{}, err
	}

	balance, err := s.balances.GetBalance(ctx, user.Token)
	if err != nil {
		return models.UserWithdrawalsView{}, err
	}
	if err := ValidateWithdrawal(req, balance.Available); err != nil {
		return models.UserWithdrawalsView{}, err
	}

	body := models.CreateWithdrawalBody{
		Amount:        req.Amount,
		Currency:      strings.ToUpper(strings.TrimSpace(req.Coin)),
		WalletAddress: strings.TrimSpace(req.WalletAddress),
		Network:       strings.ToUpper(strings.TrimSpace(req.Network)),
	}
	key := fingerprint(user.UserID, "withdrawal", body.Amount.String(), body.Currency, body.Network, body.WalletAddress)

	var created models.Withdrawal
	err = s.submit.run(ctx, user.UserID, "withdrawal", body.Amount.String(), key, func(ctx context.Context) (string, error) {
		var err error
		created, err = s.api.CreateWithdrawal(ctx, user.Token, body)
		return created.ID, err
	})
	if err != nil {
		return models.UserWithdrawalsView{}, err
	}

	view, err := s.List(ctx, user.Token)
	if err != nil {
		zap.L().Warn("withdrawal created but refresh failed",
			zap.String("user_id", user.UserID),
			zap.String("withdrawal_id", created.ID),
			zap.Error(err))
		view = models.UserWithdrawalsView{RefreshFailed: true}
	}
	if created.ID != "" {
		c := withBadge(created)
		view.Created = &c
	}
	return view, nil
}
