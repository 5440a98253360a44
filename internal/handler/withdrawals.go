package handler

import (
	"net/http"
	"strings"

	"github.com/mdflamingo/paydesk/internal/logger"
	"github.com/mdflamingo/paydesk/internal/middleware"
	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/mdflamingo/paydesk/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func GetWithdrawalsHandler(w http.ResponseWriter, r *http.Request, svc *service.WithdrawalService) {
	user, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	view, err := svc.List(r.Context(), user.Token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func GetNetworksHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.Networks())
}

func QuoteHandler(w http.ResponseWriter, r *http.Request, svc *service.WithdrawalService) {
	user, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		logger.Log.Warn("invalid quote amount", zap.String("amount", r.URL.Query().Get("amount")))
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	quote, err := svc.Quote(r.Context(), user.Token, amount, r.URL.Query().Get("network"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

func WithdrawHandler(w http.ResponseWriter, r *http.Request, svc *service.WithdrawalService) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		logger.Log.Warn("invalid content type", zap.String("content_type", r.Header.Get("Content-Type")))
		writeError(w, http.StatusUnsupportedMediaType, "Invalid Content-Type")
		return
	}

	user, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req models.WithdrawalRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.Log.Warn("failed to unmarshal request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := svc.Submit(r.Context(), user, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Log.Info("withdrawal submitted",
		zap.String("user_id", user.UserID),
		zap.String("amount", req.Amount.String()),
		zap.String("network", req.Network))
	writeJSON(w, http.StatusCreated, view)
}
