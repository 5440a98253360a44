package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mdflamingo/paydesk/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ActionApprove        = "approve"
	ActionReject         = "reject"
	ActionRetry          = "retry"
	ActionStatus         = "status"
	ActionProcessPending = "process_pending"
)

type AdminAPI interface {
	ListWithdrawals(ctx context.Context, token string, page, limit int) (models.WithdrawalPage, error)
	WithdrawalAction(ctx context.Context, token, id, action, reason string) (models.Withdrawal, error)
	ProcessPending(ctx context.Context, token string) (models.ProcessPendingResult, error)
	AdminBalance(ctx context.Context, token, currency string) (models.AdminBalance, error)
}

type AdminService struct {
	api             AdminAPI
	journal         Journal
	balanceCurrency string
}

func NewAdminService(api AdminAPI, journal Journal, balanceCurrency string) *AdminService {
	return &AdminService{api: api, journal: journal, balanceCurrency: balanceCurrency}
}

// List fetches one page from the payments API and narrows it in memory by
// status and free-text search.
func (s *AdminService) List(ctx context.Context, token string, q models.AdminListQuery) (models.AdminWithdrawalsView, error) {
	page, err := s.api.ListWithdrawals(ctx, token, q.Page, q.Limit)
	if err != nil {
		return models.AdminWithdrawalsView{}, err
	}
	return pageView(page, q), nil
}

func (s *AdminService) Balance(ctx context.Context, token, currency string) (models.AdminBalance, error) {
	if currency == "" {
		currency = s.balanceCurrency
	}
	return s.api.AdminBalance(ctx, token, currency)
}

func (s *AdminService) Approve(ctx context.Context, admin models.Identity, id string, q models.AdminListQuery) (models.AdminWithdrawalsView, error) {
	return s.act(ctx, admin, id, ActionApprove, "", q)
}

func (s *AdminService) Reject(ctx context.Context, admin models.Identity, id, reason string, q models.AdminListQuery) (models.AdminWithdrawalsView, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.AdminWithdrawalsView{}, invalid("A rejection reason is required")
	}
	return s.act(ctx, admin, id, ActionReject, reason, q)
}

func (s *AdminService) Retry(ctx context.Context, admin models.Identity, id string, q models.AdminListQuery) (models.AdminWithdrawalsView, error) {
	return s.act(ctx, admin, id, ActionRetry, "", q)
}

func (s *AdminService) CheckStatus(ctx context.Context, admin models.Identity, id string, q models.AdminListQuery) (models.AdminWithdrawalsView, error) {
	return s.act(ctx, admin, id, ActionStatus, "", q)
}

func (s *AdminService) act(ctx context.Context, admin models.Identity, id, action, reason string, q models.AdminListQuery) (models.AdminWithdrawalsView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.AdminWithdrawalsView{}, invalid("Withdrawal id is required")
	}

	updated, err := s.api.WithdrawalAction(ctx, admin.Token, id, action, reason)
	s.audit(ctx, admin, id, action, reason, err)
	if err != nil {
		return models.AdminWithdrawalsView{}, err
	}

	view := s.refreshAfter(ctx, admin, id, action, q)
	if updated.ID != "" {
		u := withBadge(updated)
		view.Updated = &u
	}
	return view, nil
}

// ProcessPending triggers the bulk payout endpoint. Only the aggregate count
// is known; per-row results show up in the refreshed list.
func (s *AdminService) ProcessPending(ctx context.Context, admin models.Identity, q models.AdminListQuery) (models.AdminWithdrawalsView, error) {
	res, err := s.api.ProcessPending(ctx, admin.Token)
	s.audit(ctx, admin, "*", ActionProcessPending, "", err)
	if err != nil {
		return models.AdminWithdrawalsView{}, err
	}

	view := s.refreshAfter(ctx, admin, "*", ActionProcessPending, q)
	processed := res.Processed
	view.Processed = &processed
	return view, nil
}

func (s *AdminService) Actions(ctx context.Context, limit int) ([]models.AdminAction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.journal.ListAdminActions(ctx, limit)
}

// refreshAfter runs refresh once an action has been accepted. The action
// already happened, so a failed read is logged and flagged, not returned.
func (s *AdminService) refreshAfter(ctx context.Context, admin models.Identity, id, action string, q models.AdminListQuery) models.AdminWithdrawalsView {
	view, err := s.refresh(ctx, admin.Token, q)
	if err != nil {
		zap.L().Warn("admin action applied but refresh failed",
			zap.String("admin_id", admin.UserID),
			zap.String("withdrawal_id", id),
			zap.String("action", action),
			zap.Error(err))
		return models.AdminWithdrawalsView{RefreshFailed: true}
	}
	return view
}

// refresh issues exactly two reads, the withdrawal page and the payout
// balance, in parallel.
func (s *AdminService) refresh(ctx context.Context, token string, q models.AdminListQuery) (models.AdminWithdrawalsView, error) {
	var (
		page    models.WithdrawalPage
		balance models.AdminBalance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.api.ListWithdrawals(gctx, token, q.Page, q.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		balance, err = s.api.AdminBalance(gctx, token, s.balanceCurrency)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.AdminWithdrawalsView{}, err
	}

	view := pageView(page, q)
	view.Balance = &balance
	return view, nil
}

func (s *AdminService) audit(ctx context.Context, admin models.Identity, id, action, reason string, actionErr error) {
	outcome := "ok"
	if actionErr != nil {
		outcome = actionErr.Error()
	}

	err := s.journal.SaveAdminAction(context.WithoutCancel(ctx), models.AdminAction{
		ID:           uuid.NewString(),
		WithdrawalID: id,
		Action:       action,
		Reason:       reason,
		AdminID:      admin.UserID,
		Outcome:      outcome,
	})
	if err != nil {
		zap.L().Error("failed to audit admin action",
			zap.String("withdrawal_id", id),
			zap.String("action", action),
			zap.Error(err))
	}
}

func pageView(page models.WithdrawalPage, q models.AdminListQuery) models.AdminWithdrawalsView {
	return models.AdminWithdrawalsView{
		Withdrawals: withBadges(FilterWithdrawals(page.Withdrawals, q.Status, q.Search)),
		Total:       page.Total,
		Page:        page.Page,
		Limit:       page.Limit,
	}
}

// FilterWithdrawals keeps rows matching status (empty or "all" keeps every
// status) and containing search, case-insensitively, in the id, user email,
// user name, wallet address or network.
func FilterWithdrawals(ws []models.Withdrawal, status, search string) []models.Withdrawal {
	status = strings.ToLower(strings.TrimSpace(status))
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]models.Withdrawal, 0, len(ws))
	for _, w := range ws {
		if status != "" && status != "all" && string(w.Status.Normalized()) != status {
			continue
		}
		if search != "" && !matches(w, search) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func matches(w models.Withdrawal, needle string) bool {
	for _, hay := range []string{w.ID, w.User.Email, w.User.Name, w.WalletAddress, w.Network} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}
