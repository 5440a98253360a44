package service

import (
	"context"
	"strings"
	"time"

	"github.com/mdflamingo/paydesk/internal/models"
)

type KYCAPI interface {
	SubmitKYC(ctx context.Context, token string, fields map[string]string, front, back *models.Upload) (models.KYCSubmission, error)
}

var kycImageTypes = []string{"image/jpeg", "image/png"}

type KYCService struct {
	api    KYCAPI
	submit submitter
	now    func() time.Time
}

func NewKYCService(api KYCAPI, guard SubmitGuard, journal Journal) *KYCService {
	return &KYCService{
		api:    api,
		submit: submitter{guard: guard, journal: journal},
		now:    time.Now,
	}
}

// ValidateKYC rejects the form before any upload begins. The expiry date is
// compared by calendar day in the location of now.
func ValidateKYC(req *models.KYCRequest, now time.Time) error {
	if err := validateUpload(req.Front, "Front document image", kycImageTypes...); err != nil {
		return err
	}
	if err := validateUpload(req.Back, "Back document image", kycImageTypes...); err != nil {
		return err
	}
	req.DocumentNumber = strings.TrimSpace(req.DocumentNumber)
	req.ExpiryDate = strings.TrimSpace(req.ExpiryDate)
	if err := validateStruct(req); err != nil {
		return err
	}

	expiry, err := time.ParseInLocation(time.DateOnly, req.ExpiryDate, now.Location())
	if err != nil {
		return invalid("Expiry date must be formatted as YYYY-MM-DD")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !expiry.After(today) {
		return invalid("Expiry date must be in the future")
	}
	return nil
}

func (s *KYCService) Submit(ctx context.Context, user models.Identity, req models.KYCRequest) (models.KYCSubmission, error) {
	if err := ValidateKYC(&req, s.now()); err != nil {
		return models.KYCSubmission{}, err
	}

	fields := map[string]string{
		"documentNumber": req.DocumentNumber,
		"expiryDate":     req.ExpiryDate,
	}
	if user.Name != "" {
		fields["fullName"] = user.Name
	}
	if user.Email != "" {
		fields["email"] = user.Email
	}

	key := fingerprint(user.UserID, "kyc", req.DocumentNumber, req.ExpiryDate)

	var out models.KYCSubmission
	err := s.submit.run(ctx, user.UserID, "kyc", "", key, func(ctx context.Context) (string, error) {
		var err error
		out, err = s.api.SubmitKYC(ctx, user.Token, fields, req.Front, req.Back)
		return out.ID, err
	})
	return out, err
}
