package service

import (
	"sort"
	"strings"

	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/shopspring/decimal"
)

var (
	MinWithdrawal    = decimal.NewFromInt(10)
	MinDeposit       = decimal.NewFromInt(10)
	MinAddressLength = 20
)

type networkInfo struct {
	fee   decimal.Decimal
	coins []string
}

// Flat estimated chain costs in USD. Display only, the payments API charges
// the real fee.
var networks = map[string]networkInfo{
	"TRC20": {fee: decimal.NewFromInt(1), coins: []string{"USDT"}},
	"ERC20": {fee: decimal.NewFromInt(15), coins: []string{"USDT", "USDC", "ETH"}},
	"BEP20": {fee: decimal.RequireFromString("0.8"), coins: []string{"USDT", "BNB"}},
	"BTC":   {fee: decimal.NewFromInt(5), coins: []string{"BTC"}},
	"SOL":   {fee: decimal.RequireFromString("0.5"), coins: []string{"SOL", "USDC"}},
}

func Networks() []models.Network {
	out := make([]models.Network, 0, len(networks))
	for name, n := range networks {
		out = append(out, models.Network{Name: name, Fee: n.fee, Coins: append([]string(nil), n.coins...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NetworkFee returns the fee for network, case-insensitively.
func NetworkFee(network string) (decimal.Decimal, bool) {
	n, ok := networks[strings.ToUpper(strings.TrimSpace(network))]
	if !ok {
		return decimal.Zero, false
	}
	return n.fee, true
}

func coinOnNetwork(coin, network string) bool {
	n, ok := networks[strings.ToUpper(strings.TrimSpace(network))]
	if !ok {
		return false
	}
	coin = strings.ToUpper(strings.TrimSpace(coin))
	for _, c := range n.coins {
		if c == coin {
			return true
		}
	}
	return false
}

// Quote is what the withdrawal form shows under the amount field:
// total = amount + fee, remaining = balance - amount - fee.
func Quote(amount decimal.Decimal, network string, balance decimal.Decimal) (models.WithdrawalQuote, error) {
	fee, ok := NetworkFee(network)
	if !ok {
		return models.WithdrawalQuote{}, invalid("Unsupported network %q", network)
	}
	total := amount.Add(fee)
	return models.WithdrawalQuote{
		Amount:        amount,
		Network:       strings.ToUpper(network),
		NetworkFee:    fee,
		TotalDeducted: total,
		Balance:       balance,
		Remaining:     balance.Sub(total),
	}, nil
}
