package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "paws/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "rule violation keeps reason",
			err:        apperrors.RulePatternViolation("weeknights only"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperrors.CodeRulePatternViolation,
			wantError:  "weeknights only",
		},
		{
			name:       "past date",
			err:        apperrors.PastDateRequested("start date cannot be in the past"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodePastDateRequested,
			wantError:  "start date cannot be in the past",
		},
		{
			name:       "internal hides cause",
			err:        apperrors.Internal("failed to save booking: mongo down", errors.New("mongo down")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeInternal,
			wantError:  "Internal server error",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeInternal,
			wantError:  "Internal server error",
		},
		{
			name:       "status derived from code",
			err:        &apperrors.AppError{Code: apperrors.CodeUnavailable, Message: "Calendar is temporarily unavailable"},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.CodeUnavailable,
			wantError:  "Calendar is temporarily unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteError(rec, tt.err); err != nil {
				t.Fatalf("WriteError() returned %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{name: "defaults", query: "", wantLimit: 10, wantOffset: 0},
		{name: "explicit", query: "?limit=25&offset=50", wantLimit: 25, wantOffset: 50},
		{name: "limit capped", query: "?limit=5000", wantLimit: 100, wantOffset: 0},
		{name: "zero limit uses default", query: "?limit=0", wantLimit: 10, wantOffset: 0},
		{name: "negative offset", query: "?offset=-3", wantErr: true},
		{name: "negative limit", query: "?limit=-1", wantErr: true},
		{name: "bad limit", query: "?limit=abc", wantErr: true},
		{name: "bad offset", query: "?offset=1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/requests"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(req)
			if tt.wantErr {
				appErr := apperrors.AsAppError(err)
				if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
					t.Fatalf("expected INVALID_INPUT, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
