package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "pending"
	WithdrawalProcessing WithdrawalStatus = "processing"
	WithdrawalCompleted  WithdrawalStatus = "completed"
	WithdrawalFailed     WithdrawalStatus = "failed"
	WithdrawalRejected   WithdrawalStatus = "rejected"
)

// Normalized lower-cases the status; the payments API is not consistent
// about case.
func (s WithdrawalStatus) Normalized() WithdrawalStatus {
	return WithdrawalStatus(strings.ToLower(strings.TrimSpace(string(s))))
}

// Terminal reports whether no admin action can move the withdrawal further.
func (s WithdrawalStatus) Terminal() bool {
	n := s.Normalized()
	return n == WithdrawalCompleted || n == WithdrawalRejected
}

type WithdrawalUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Withdrawal struct {
	ID                string           `json:"id"`
	User              WithdrawalUser   `json:"user"`
	Amount            decimal.Decimal  `json:"amount"`
	Currency          string           `json:"currency"`
	WalletAddress     string           `json:"walletAddress"`
	Network           string           `json:"network"`
	Status            WithdrawalStatus `json:"status"`
	NowpaymentsStatus string           `json:"nowpaymentsStatus,omitempty"`
	NowpaymentsID     string           `json:"nowpaymentsId,omitempty"`
	FailureReason     string           `json:"failureReason,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

type WithdrawalPage struct {
	Withdrawals []Withdrawal `json:"withdrawals"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	Limit       int          `json:"limit"`
}

// WithdrawalView is a withdrawal plus the badge label the dashboard renders.
// Actionable is false once no admin action can move it further.
type WithdrawalView struct {
	Withdrawal
	Badge      string `json:"badge"`
	Actionable bool   `json:"actionable"`
}

type WithdrawalRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Network       string          `json:"network" validate:"required"`
	Coin          string          `json:"coin" validate:"required"`
	WalletAddress string          `json:"walletAddress" validate:"required"`
}

// CreateWithdrawalBody is what the payments API expects on POST /api/withdrawals.
type CreateWithdrawalBody struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	WalletAddress string          `json:"walletAddress"`
	Network       string          `json:"network"`
}

type WithdrawalQuote struct {
	Amount        decimal.Decimal `json:"amount"`
	Network       string          `json:"network"`
	NetworkFee    decimal.Decimal `json:"networkFee"`
	TotalDeducted decimal.Decimal `json:"totalDeducted"`
	Balance       decimal.Decimal `json:"balance"`
	Remaining     decimal.Decimal `json:"remaining"`
}

type Network struct {
	Name  string          `json:"name"`
	Fee   decimal.Decimal `json:"fee"`
	Coins []string        `json:"coins"`
}

// UserWithdrawalsView is the withdrawals page state. RefreshFailed is set when
// a submission went through but the follow-up reads did not.
type UserWithdrawalsView struct {
	Balance       Balance          `json:"balance"`
	Withdrawals   []WithdrawalView `json:"withdrawals"`
	Created       *WithdrawalView  `json:"created,omitempty"`
	RefreshFailed bool             `json:"refreshFailed,omitempty"`
}

type AdminWithdrawalsView struct {
	Withdrawals []WithdrawalView `json:"withdrawals"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	Balance     *AdminBalance    `json:"balance,omitempty"`
	Processed   *int             `json:"processed,omitempty"`
	Updated     *WithdrawalView  `json:"updated,omitempty"`

	RefreshFailed bool `json:"refreshFailed,omitempty"`
}

type AdminListQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
}

type ProcessPendingResult struct {
	Processed int    `json:"processed"`
	Message   string `json:"message,omitempty"`
}
