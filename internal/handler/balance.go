package handler

import (
	"net/http"

	"github.com/mdflamingo/paydesk/internal/logger"
	"github.com/mdflamingo/paydesk/internal/middleware"
	"github.com/mdflamingo/paydesk/internal/service"
	"go.uber.org/zap"
)

func GetBalanceHandler(w http.ResponseWriter, r *http.Request, svc *service.BalanceService) {
	user, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	balance, err := svc.GetBalance(r.Context(), user.Token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}
