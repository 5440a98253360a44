package service

import (
	"context"
	"sync"

	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/mdflamingo/paydesk/internal/payapi"
)

// fakeAPI records every call it receives and answers from canned data.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	deposits    []models.Deposit
	withdrawals []models.Withdrawal
	balance     models.AdminBalance
	actionErr   error
	createErr   error

	// pageSize > 0 makes ListWithdrawals serve pages of that size.
	pageSize   int
	// refreshErr fails every read made after a successful mutation.
	refreshErr error
	mutated    bool

	created      []models.CreateWithdrawalBody
	cryptoBodies []models.CryptoDepositBody
	fileFields   []map[string]string
	kycFields    []map[string]string
	actionReason string
	keys         []string
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) readErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutated {
		return f.refreshErr
	}
	return nil
}

func (f *fakeAPI) markMutated() {
	f.mu.Lock()
	f.mutated = true
	f.mu.Unlock()
}

func (f *fakeAPI) ListDeposits(ctx context.Context, token string) ([]models.Deposit, error) {
	f.record("ListDeposits")
	if err := f.readErr(); err != nil {
		return nil, err
	}
	return f.deposits, nil
}

func (f *fakeAPI) ListWithdrawals(ctx context.Context, token string, page, limit int) (models.WithdrawalPage, error) {
	f.record("ListWithdrawals")
	if err := f.readErr(); err != nil {
		return models.WithdrawalPage{}, err
	}

	rows := f.withdrawals
	if f.pageSize > 0 {
		start := (max(page, 1) - 1) * f.pageSize
		end := min(start+f.pageSize, len(rows))
		if start >= len(rows) {
			rows = nil
		} else {
			rows = rows[start:end]
		}
	}
	return models.WithdrawalPage{Withdrawals: rows, Total: len(f.withdrawals), Page: page, Limit: limit}, nil
}

func (f *fakeAPI) CreateWithdrawal(ctx context.Context, token string, body models.CreateWithdrawalBody) (models.Withdrawal, error) {
	f.record("CreateWithdrawal")
	if f.createErr != nil {
		return models.Withdrawal{}, f.createErr
	}
	f.mu.Lock()
	f.created = append(f.created, body)
	f.keys = append(f.keys, payapi.IdempotencyKey(ctx))
	f.mutated = true
	f.mu.Unlock()
	return models.Withdrawal{ID: "w-new", Amount: body.Amount, Status: models.WithdrawalPending}, nil
}

func (f *fakeAPI) WithdrawalAction(ctx context.Context, token, id, action, reason string) (models.Withdrawal, error) {
	f.record("WithdrawalAction:" + action)
	if f.actionErr != nil {
		return models.Withdrawal{}, f.actionErr
	}
	f.mu.Lock()
	f.actionReason = reason
	f.mutated = true
	f.mu.Unlock()
	return models.Withdrawal{ID: id, Status: models.WithdrawalProcessing, NowpaymentsStatus: "sending"}, nil
}

func (f *fakeAPI) ProcessPending(ctx context.Context, token string) (models.ProcessPendingResult, error) {
	f.record("ProcessPending")
	f.markMutated()
	return models.ProcessPendingResult{Processed: 3}, nil
}

func (f *fakeAPI) AdminBalance(ctx context.Context, token, currency string) (models.AdminBalance, error) {
	f.record("AdminBalance:" + currency)
	if err := f.readErr(); err != nil {
		return models.AdminBalance{}, err
	}
	b := f.balance
	b.Currency = currency
	return b, nil
}

func (f *fakeAPI) CreateCryptoDeposit(ctx context.Context, token string, body models.CryptoDepositBody) (models.Deposit, error) {
	f.record("CreateCryptoDeposit")
	f.mu.Lock()
	f.cryptoBodies = append(f.cryptoBodies, body)
	f.mu.Unlock()
	return models.Deposit{ID: "d-new", Amount: body.Amount, Status: "pending"}, nil
}

func (f *fakeAPI) CreateFileDeposit(ctx context.Context, token string, fields map[string]string, proof *models.Upload) (models.Deposit, error) {
	f.record("CreateFileDeposit")
	f.mu.Lock()
	f.fileFields = append(f.fileFields, fields)
	f.mu.Unlock()
	return models.Deposit{ID: "d-file", Status: "pending"}, nil
}

func (f *fakeAPI) BankAccount(ctx context.Context, token, userID string) (models.BankAccount, error) {
	f.record("BankAccount:" + userID)
	return models.BankAccount{BankName: "Test Bank", Reference: userID}, nil
}

func (f *fakeAPI) SubmitKYC(ctx context.Context, token string, fields map[string]string, front, back *models.Upload) (models.KYCSubmission, error) {
	f.record("SubmitKYC")
	f.mu.Lock()
	f.kycFields = append(f.kycFields, fields)
	f.mu.Unlock()
	return models.KYCSubmission{ID: "k1", Status: "pending"}, nil
}

type memGuard struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
}

func newMemGuard() *memGuard {
	return &memGuard{held: map[string]bool{}}
}

func (g *memGuard) Acquire(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *memGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	g.released++
	return nil
}

type memJournal struct {
	mu          sync.Mutex
	submissions []models.Submission
	actions     []models.AdminAction
}

func (j *memJournal) SaveSubmission(ctx context.Context, s models.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.submissions = append(j.submissions, s)
	return nil
}

func (j *memJournal) SaveAdminAction(ctx context.Context, a models.AdminAction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.actions = append(j.actions, a)
	return nil
}

func (j *memJournal) ListAdminActions(ctx context.Context, limit int) ([]models.AdminAction, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if limit > len(j.actions) {
		limit = len(j.actions)
	}
	return append([]models.AdminAction(nil), j.actions[:limit]...), nil
}
