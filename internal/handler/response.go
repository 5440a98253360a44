package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/mdflamingo/paydesk/internal/logger"
	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/mdflamingo/paydesk/internal/payapi"
	"github.com/mdflamingo/paydesk/internal/service"
	"go.uber.org/zap"
)

const (
	maxMultipartMemory = 8 << 20
	// two documents plus the text fields and multipart framing
	maxMultipartBody = 2*service.MaxUploadSize + 1<<20
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	respJSON, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to marshal response to JSON", zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(respJSON)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respJSON, _ := json.Marshal(errorResponse{Status: "error", Message: msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(respJSON)
}

// handleServiceError maps the error categories the dashboard distinguishes:
// form rejections, payments API answers, and failures to reach it.
func handleServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	var apiErr *payapi.APIError

	switch {
	case errors.As(err, &verr):
		logger.Log.Info("request rejected by validation", zap.String("reason", verr.Message))
		writeError(w, http.StatusUnprocessableEntity, verr.Message)
	case errors.Is(err, service.ErrDuplicateSubmission):
		logger.Log.Warn("duplicate submission refused")
		writeError(w, http.StatusConflict, "This request is already being processed")
	case errors.Is(err, service.ErrDepositAddressNotFound):
		logger.Log.Warn("deposit address not configured", zap.Error(err))
		writeError(w, http.StatusNotFound, "Deposits are not available for this coin and network")
	case errors.As(err, &apiErr):
		logger.Log.Warn("payments api returned an error",
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.Message))
		writeError(w, apiErr.StatusCode, apiErr.Message)
	case errors.Is(err, payapi.ErrTransport):
		logger.Log.Error("payments api unreachable", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Network error, please try again")
	default:
		logger.Log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// decodeOptionalJSON is decodeJSON that leaves v untouched for an empty body.
func decodeOptionalJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// parseMultipart caps the request body before parsing so an oversized upload
// is refused while it streams in. It writes the error response itself and
// reports whether the handler may continue.
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Log.Warn("multipart body too large", zap.Int64("limit", tooLarge.Limit))
			writeError(w, http.StatusRequestEntityTooLarge, "Uploaded files must be smaller than 10MB")
			return false
		}
		logger.Log.Warn("failed to parse multipart form", zap.Error(err))
		writeError(w, http.StatusBadRequest, "failed to parse form data")
		return false
	}
	return true
}

// readUpload returns nil when field is absent from the multipart form.
func readUpload(r *http.Request, field string) (*models.Upload, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	// one byte over the limit is enough for validation to reject it
	content, err := io.ReadAll(io.LimitReader(f, service.MaxUploadSize+1))
	if err != nil {
		return nil, err
	}

	return &models.Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
