package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/mdflamingo/paydesk/internal/payapi"
	"github.com/mdflamingo/paydesk/internal/repository"
	"go.uber.org/zap"
)

type Journal interface {
	SaveSubmission(ctx context.Context, s models.Submission) error
	SaveAdminAction(ctx context.Context, a models.AdminAction) error
	ListAdminActions(ctx context.Context, limit int) ([]models.AdminAction, error)
}

type SubmitGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// submitter wraps a mutating call to the payments API: it blocks an identical
// submission still in flight, tags the request with a fresh idempotency key
// and journals what went out.
type submitter struct {
	guard   SubmitGuard
	journal Journal
}

func fingerprint(userID, kind string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(userID + "|" + kind + "|" + strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}

// run executes call under the guard. The guard stays held on success so a
// double click inside the TTL is refused; on failure it is released so the
// user can correct the form and resubmit.
func (s submitter) run(ctx context.Context, userID, kind, amount, key string, call func(ctx context.Context) (string, error)) error {
	ok, err := s.guard.Acquire(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicateSubmission
	}

	idempotencyKey := uuid.NewString()
	upstreamID, err := call(payapi.WithIdempotencyKey(ctx, idempotencyKey))
	if err != nil {
		if relErr := s.guard.Release(context.WithoutCancel(ctx), key); relErr != nil {
			zap.L().Warn("failed to release submit guard", zap.String("kind", kind), zap.Error(relErr))
		}
		return err
	}

	err = s.journal.SaveSubmission(context.WithoutCancel(ctx), models.Submission{
		ID:             uuid.NewString(),
		UserID:         userID,
		Kind:           kind,
		IdempotencyKey: idempotencyKey,
		Amount:         amount,
		UpstreamID:     upstreamID,
	})
	if err != nil {
		// the payments API already accepted it; the journal is best effort
		if errors.Is(err, repository.ErrConflict) {
			zap.L().Warn("submission already journaled", zap.String("idempotency_key", idempotencyKey))
		} else {
			zap.L().Error("failed to journal submission", zap.String("kind", kind), zap.Error(err))
		}
	}
	return nil
}
