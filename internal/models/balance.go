package models

import "github.com/shopspring/decimal"

func init() {
	// dashboard pages and the payments API both exchange amounts as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type Balance struct {
	Deposited decimal.Decimal `json:"deposited"`
	Withdrawn decimal.Decimal `json:"withdrawn"`
	Available decimal.Decimal `json:"available"`
}

type AdminBalance struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}
