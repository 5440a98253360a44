package service

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mdflamingo/paydesk/internal/models"
)

// MaxUploadSize caps each uploaded document.
const MaxUploadSize = 10 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return lowerFirst(fld.Name)
		}
		return name
	})
	return v
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// validateStruct runs the tag rules on req and turns the first failure into a
// ValidationError.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	e := verrs[0]
	switch e.Tag() {
	case "required":
		return invalid("%s is required", e.Field())
	case "min":
		return invalid("%s must have minimum length %s", e.Field(), e.Param())
	default:
		return invalid("%s is invalid", e.Field())
	}
}

// validateUpload checks presence, size and sniffed content type of an
// uploaded file. The declared content type is replaced by the sniffed one.
func validateUpload(u *models.Upload, label string, allowed ...string) error {
	if u == nil || len(u.Content) == 0 {
		return invalid("%s is required", label)
	}
	if len(u.Content) > MaxUploadSize {
		return invalid("%s must be smaller than 10MB", label)
	}

	sniffed := http.DetectContentType(u.Content)
	if i := strings.Index(sniffed, ";"); i >= 0 {
		sniffed = sniffed[:i]
	}
	for _, a := range allowed {
		if sniffed == a {
			u.ContentType = sniffed
			return nil
		}
	}
	return invalid("%s must be one of: %s", label, strings.Join(allowed, ", "))
}
