package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikolayk812/cartservice/internal/domain"
	"go.uber.org/zap"
)

const (
	codeCartNotFound       = "CART_NOT_FOUND"
	codeInvalidAddress     = "INVALID_ADDRESS"
	codeInvalidItem        = "INVALID_ITEM"
	codeInvalidRequest     = "INVALID_REQUEST"
	codeEmptyCart          = "EMPTY_CART"
	codeCartAlreadyExists  = "CART_ALREADY_EXISTS"
	codeConcurrentConflict = "CONCURRENT_UPDATE_CONFLICT"
	codeStoreUnavailable   = "STORE_UNAVAILABLE"
	codeInternal           = "INTERNAL"
)

// apiError pairs a domain error with the status and stable code clients branch on.
type apiError struct {
	Status int
	Code   string
	Err    error
}

func (e *apiError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *apiError) Unwrap() error { return e.Err }

type violationResponse struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Violations []violationResponse `json:"violations,omitempty"`
}

func classify(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	mapping := []struct {
		target error
		status int
		code   string
	}{
		{domain.ErrCartNotFound, http.StatusNotFound, codeCartNotFound},
		{domain.ErrInvalidAddress, http.StatusBadRequest, codeInvalidAddress},
		{domain.ErrInvalidItem, http.StatusBadRequest, codeInvalidItem},
		{domain.ErrInvalidCart, http.StatusBadRequest, codeInvalidRequest},
		{domain.ErrEmptyCart, http.StatusUnprocessableEntity, codeEmptyCart},
		{domain.ErrCartAlreadyExists, http.StatusConflict, codeCartAlreadyExists},
		{domain.ErrConcurrentUpdateConflict, http.StatusConflict, codeConcurrentConflict},
		{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable},
	}

	for _, m := range mapping {
		if errors.Is(err, m.target) {
			return &apiError{Status: m.status, Code: m.code, Err: err}
		}
	}

	return &apiError{Status: http.StatusInternalServerError, Code: codeInternal, Err: err}
}

func badRequest(err error) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: codeInvalidRequest, Err: err}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := classify(err)

	body := errorResponse{
		Code:    apiErr.Code,
		Message: apiErr.Error(),
	}

	if apiErr.Status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", apiErr.Code),
			zap.Error(err))
		if apiErr.Code == codeInternal {
			body.Message = "internal error"
		}
	}

	var addrErr *domain.AddressError
	if errors.As(err, &addrErr) {
		for _, v := range addrErr.Violations {
			body.Violations = append(body.Violations, violationResponse{Field: v.Field, Reason: v.Reason})
		}
	}

	writeJSON(w, apiErr.Status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
