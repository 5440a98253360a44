package service

import (
	"strings"

	"github.com/mdflamingo/paydesk/internal/models"
)

// StatusBadge picks the label for a withdrawal row. The payment processor's
// status wins when it is one we recognise.
func StatusBadge(status models.WithdrawalStatus, processorStatus string) string {
	switch strings.ToLower(processorStatus) {
	case "finished", "confirmed":
		return "Completed"
	case "sending", "waiting":
		return "Processing"
	case "failed", "expired":
		return "Failed"
	}

	switch status.Normalized() {
	case models.WithdrawalPending:
		return "Pending"
	case models.WithdrawalProcessing:
		return "Processing"
	case models.WithdrawalCompleted:
		return "Completed"
	case models.WithdrawalFailed:
		return "Failed"
	case models.WithdrawalRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

func withBadges(ws []models.Withdrawal) []models.WithdrawalView {
	out := make([]models.WithdrawalView, 0, len(ws))
	for _, w := range ws {
		out = append(out, withBadge(w))
	}
	return out
}

func withBadge(w models.Withdrawal) models.WithdrawalView {
	return models.WithdrawalView{
		Withdrawal: w,
		Badge:      StatusBadge(w.Status, w.NowpaymentsStatus),
		Actionable: !w.Status.Terminal(),
	}
}
