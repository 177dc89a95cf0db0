package http

import (
	"encoding/json"
	"net/http"

	apperrors "paws/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       any   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, err error) error {
	var statusCode int
	var errResp ErrorResponse

	if apperrors.IsAppError(err) {
		e := apperrors.AsAppError(err)
		statusCode = e.StatusCode()
		if statusCode == 0 {
			statusCode = statusForCode(e.Code)
		}
		errResp = ErrorResponse{
			Error:   e.Message,
			Code:    e.Code,
			Details: e.Details,
		}
		if statusCode == http.StatusInternalServerError {
			errResp.Error = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		errResp = ErrorResponse{
			Error: "Internal server error",
			Code:  apperrors.CodeInternal,
		}
	}

	return WriteJSON(w, statusCode, errResp)
}

func statusForCode(code string) int {
	switch code {
	case apperrors.CodeInvalidInput, apperrors.CodeBadRequest,
		apperrors.CodeInvalidDateRange, apperrors.CodePastDateRequested:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeValidation, apperrors.CodeRulePatternViolation:
		return http.StatusUnprocessableEntity
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func WritePaginated(w http.ResponseWriter, data any, totalCount int64, limit int, offset int) error {
	return WriteJSON(w, http.StatusOK, PaginatedResponse{
		Data:       data,
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     offset,
	})
}
