package handler

import (
	"net/http"

	"github.com/mdflamingo/paydesk/internal/logger"
	"github.com/mdflamingo/paydesk/internal/middleware"
	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/mdflamingo/paydesk/internal/service"
	"go.uber.org/zap"
)

func KYCHandler(w http.ResponseWriter, r *http.Request, svc *service.KYCService) {
	user, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	if !parseMultipart(w, r) {
		return
	}

	front, err := readUpload(r, "frontImage")
	if err != nil {
		logger.Log.Warn("failed to read front image", zap.Error(err))
		writeError(w, http.StatusBadRequest, "failed to read front image")
		return
	}
	back, err := readUpload(r, "backImage")
	if err != nil {
		logger.Log.Warn("failed to read back image", zap.Error(err))
		writeError(w, http.StatusBadRequest, "failed to read back image")
		return
	}

	submission, err := svc.Submit(r.Context(), user, models.KYCRequest{
		DocumentNumber: r.FormValue("documentNumber"),
		ExpiryDate:     r.FormValue("expiryDate"),
		Front:          front,
		Back:           back,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Log.Info("kyc submitted", zap.String("user_id", user.UserID), zap.String("status", submission.Status))
	writeJSON(w, http.StatusCreated, submission)
}
