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

func DepositAddressHandler(w http.ResponseWriter, r *http.Request, svc *service.DepositService) {
	addr, err := svc.DepositAddress(r.URL.Query().Get("coin"), r.URL.Query().Get("network"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, addr)
}

func CryptoDepositHandler(w http.ResponseWriter, r *http.Request, svc *service.DepositService) {
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

	var req models.CryptoDepositRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.Log.Warn("failed to unmarshal request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deposit, err := svc.SubmitCrypto(r.Context(), user, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, deposit)
}

// FileDepositHandler serves the bank and wire tabs, which post multipart
// forms with a "proof" file.
func FileDepositHandler(w http.ResponseWriter, r *http.Request, svc *service.DepositService, method models.DepositMethod) {
	user, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	if !parseMultipart(w, r) {
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("amount")))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Please enter a valid amount")
		return
	}

	proof, err := readUpload(r, "proof")
	if err != nil {
		logger.Log.Warn("failed to read proof of payment", zap.Error(err))
		writeError(w, http.StatusBadRequest, "failed to read proof of payment")
		return
	}

	deposit, err := svc.SubmitFile(r.Context(), user, models.FileDepositRequest{
		Method:    method,
		Amount:    amount,
		Currency:  r.FormValue("currency"),
		Reference: r.FormValue("reference"),
		Proof:     proof,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, deposit)
}

func BankAccountHandler(w http.ResponseWriter, r *http.Request, svc *service.DepositService) {
	user, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	account, err := svc.BankAccount(r.Context(), user)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}
