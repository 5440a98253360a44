package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mdflamingo/paydesk/internal/logger"
	"github.com/mdflamingo/paydesk/internal/middleware"
	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/mdflamingo/paydesk/internal/service"
	"go.uber.org/zap"
)

func listQuery(r *http.Request) models.AdminListQuery {
	return models.AdminListQuery{
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("q"),
	}
}

func AdminListHandler(w http.ResponseWriter, r *http.Request, svc *service.AdminService) {
	admin, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	view, err := svc.List(r.Context(), admin.Token, listQuery(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// AdminActionHandler runs approve, reject, retry or status on the withdrawal
// named by the {id} route param. Reject reads {"reason": "..."}.
func AdminActionHandler(w http.ResponseWriter, r *http.Request, svc *service.AdminService, action string) {
	admin, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	id := chi.URLParam(r, "id")
	q := listQuery(r)

	var view models.AdminWithdrawalsView
	switch action {
	case service.ActionApprove:
		view, err = svc.Approve(r.Context(), admin, id, q)
	case service.ActionReject:
		var body struct {
			Reason string `json:"reason"`
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			if err := decodeOptionalJSON(r, &body); err != nil {
				logger.Log.Warn("failed to unmarshal request", zap.Error(err))
				writeError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
		}
		view, err = svc.Reject(r.Context(), admin, id, body.Reason, q)
	case service.ActionRetry:
		view, err = svc.Retry(r.Context(), admin, id, q)
	case service.ActionStatus:
		view, err = svc.CheckStatus(r.Context(), admin, id, q)
	default:
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logger.Log.Info("admin action applied",
		zap.String("admin_id", admin.UserID),
		zap.String("withdrawal_id", id),
		zap.String("action", action))
	writeJSON(w, http.StatusOK, view)
}

func AdminProcessPendingHandler(w http.ResponseWriter, r *http.Request, svc *service.AdminService) {
	admin, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	view, err := svc.ProcessPending(r.Context(), admin, listQuery(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func AdminBalanceHandler(w http.ResponseWriter, r *http.Request, svc *service.AdminService) {
	admin, err := middleware.GetIdentityFromRequest(r)
	if err != nil {
		logger.Log.Warn("failed to get identity", zap.Error(err))
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	balance, err := svc.Balance(r.Context(), admin.Token, r.URL.Query().Get("currency"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

func AdminActionsHandler(w http.ResponseWriter, r *http.Request, svc *service.AdminService) {
	actions, err := svc.Actions(r.Context(), queryInt(r, "limit"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, actions)
}
