package service

import (
	"context"
	"strings"

	"github.com/mdflamingo/paydesk/internal/models"
)

type DepositAPI interface {
	CreateCryptoDeposit(ctx context.Context, token string, body models.CryptoDepositBody) (models.Deposit, error)
	CreateFileDeposit(ctx context.Context, token string, fields map[string]string, proof *models.Upload) (models.Deposit, error)
	BankAccount(ctx context.Context, token, userID string) (models.BankAccount, error)
}

var proofContentTypes = []string{"image/jpeg", "image/png", "application/pdf"}

type DepositService struct {
	api       DepositAPI
	addresses map[string]string
	submit    submitter
}

// NewDepositService takes the deposit address table keyed by "COIN:NETWORK".
func NewDepositService(api DepositAPI, addresses map[string]string, guard SubmitGuard, journal Journal) *DepositService {
	return &DepositService{
		api:       api,
		addresses: addresses,
		submit:    submitter{guard: guard, journal: journal},
	}
}

func (s *DepositService) DepositAddress(coin, network string) (models.DepositAddress, error) {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	network = strings.ToUpper(strings.TrimSpace(network))

	addr, ok := s.addresses[coin+":"+network]
	if !ok {
		return models.DepositAddress{}, ErrDepositAddressNotFound
	}
	return models.DepositAddress{Coin: coin, Network: network, Address: addr}, nil
}

func (s *DepositService) SubmitCrypto(ctx context.Context, user models.Identity, req models.CryptoDepositRequest) (models.Deposit, error) {
	if req.Amount.LessThan(MinDeposit) {
		return models.Deposit{}, invalid("Minimum deposit amount is $%s", MinDeposit.String())
	}
	if err := validateStruct(req); err != nil {
		return models.Deposit{}, err
	}

	addr, err := s.DepositAddress(req.Currency, req.Network)
	if err != nil {
		return models.Deposit{}, err
	}

	body := models.CryptoDepositBody{
		Amount:        req.Amount.Round(8),
		Currency:      addr.Coin,
		Method:        models.MethodCrypto,
		Network:       addr.Network,
		WalletAddress: addr.Address,
	}
	key := fingerprint(user.UserID, "deposit_crypto", body.Amount.String(), body.Currency, body.Network)

	var out models.Deposit
	err = s.submit.run(ctx, user.UserID, "deposit_crypto", body.Amount.String(), key, func(ctx context.Context) (string, error) {
		var err error
		out, err = s.api.CreateCryptoDeposit(ctx, user.Token, body)
		return out.ID, err
	})
	return out, err
}

// SubmitFile handles the bank and wire tabs. Wire transfers need a reference.
func (s *DepositService) SubmitFile(ctx context.Context, user models.Identity, req models.FileDepositRequest) (models.Deposit, error) {
	if req.Method != models.MethodBankTransfer && req.Method != models.MethodWireTransfer {
		return models.Deposit{}, invalid("Unsupported deposit method %q", req.Method)
	}
	if req.Amount.LessThan(MinDeposit) {
		return models.Deposit{}, invalid("Minimum deposit amount is $%s", MinDeposit.String())
	}
	if err := validateStruct(req); err != nil {
		return models.Deposit{}, err
	}
	req.Reference = strings.TrimSpace(req.Reference)
	if req.Method == models.MethodWireTransfer && req.Reference == "" {
		return models.Deposit{}, invalid("Wire reference is required")
	}
	if err := validateUpload(req.Proof, "Proof of payment", proofContentTypes...); err != nil {
		return models.Deposit{}, err
	}

	amount := req.Amount.Round(2).String()
	fields := map[string]string{
		"amount":   amount,
		"currency": strings.ToUpper(strings.TrimSpace(req.Currency)),
		"method":   string(req.Method),
	}
	if req.Reference != "" {
		fields["reference"] = req.Reference
	}
	if user.Email != "" {
		fields["email"] = user.Email
	}
	if user.Name != "" {
		fields["fullName"] = user.Name
	}

	kind := "deposit_" + string(req.Method)
	key := fingerprint(user.UserID, kind, amount, fields["currency"], req.Reference, fingerprint("", "proof", string(req.Proof.Content)))

	var out models.Deposit
	err := s.submit.run(ctx, user.UserID, kind, amount, key, func(ctx context.Context) (string, error) {
		var err error
		out, err = s.api.CreateFileDeposit(ctx, user.Token, fields, req.Proof)
		return out.ID, err
	})
	return out, err
}

func (s *DepositService) BankAccount(ctx context.Context, user models.Identity) (models.BankAccount, error) {
	return s.api.BankAccount(ctx, user.Token, user.UserID)
}
