package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DepositMethod string

const (
	MethodCrypto       DepositMethod = "crypto"
	MethodBankTransfer DepositMethod = "bank_transfer"
	MethodWireTransfer DepositMethod = "wire_transfer"
)

type Deposit struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        DepositMethod   `json:"method"`
	Status        string          `json:"status"`
	Reference     string          `json:"reference,omitempty"`
	WalletAddress string          `json:"walletAddress,omitempty"`
	Network       string          `json:"network,omitempty"`
	ProofURL      string          `json:"proofUrl,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type CryptoDepositRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"required"`
	Network  string          `json:"network" validate:"required"`
}

// CryptoDepositBody is the JSON body sent upstream for the crypto tab.
type CryptoDepositBody struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        DepositMethod   `json:"method"`
	Network       string          `json:"network"`
	WalletAddress string          `json:"walletAddress"`
}

// FileDepositRequest backs the bank and wire tabs, which upload proof of payment.
type FileDepositRequest struct {
	Method    DepositMethod
	Amount    decimal.Decimal
	Currency  string `validate:"required"`
	Reference string
	Proof     *Upload
}

type DepositAddress struct {
	Coin    string `json:"coin"`
	Network string `json:"network"`
	Address string `json:"address"`
}

type BankAccount struct {
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	RoutingNumber string `json:"routingNumber,omitempty"`
	SwiftCode     string `json:"swiftCode,omitempty"`
	Reference     string `json:"reference,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
}

type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}
