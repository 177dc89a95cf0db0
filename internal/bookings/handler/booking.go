package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"paws/internal/availability"
	"paws/internal/bookings/service"
	"paws/internal/notifier"
	apperrors "paws/pkg/errors"
	httputil "paws/pkg/http"
	"paws/pkg/logger"
	"paws/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// BlackoutResponse keeps the shape the booking calendar widget reads, so it
// is written without the usual data envelope.
type BlackoutResponse struct {
	Success       bool                `json:"success"`
	BlackoutDates []model.Date        `json:"blackoutDates"`
	DateRange     availability.Window `json:"dateRange"`
	Error         string              `json:"error,omitempty"`
}

type BookingHandler struct {
	service       service.BookingService
	defaultMonths int
	log           *logger.Logger
}

func NewBookingHandler(service service.BookingService, defaultMonths int, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:       service,
		defaultMonths: defaultMonths,
		log:           log,
	}
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
			Code:  apperrors.CodeBadRequest,
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Submit", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	decision, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	if err := httputil.WriteCreated(w, decision); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	bookings, totalCount, err := h.service.GetAll(r.Context(), r.URL.Query().Get("email"), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, totalCount, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	start, end := query.Get("start_date"), query.Get("end_date")
	if start == "" || end == "" {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("start_date and end_date are required"))
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), start, end)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) VIPStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	details, err := h.service.VIPStatus(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.writeError(w, "VIPStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, details); err != nil {
		h.log.Error("failed to write success response", "handler", "VIPStatus", "operation", "WriteSuccess", "error", err)
	}
}

// BlackoutDates answers 503 with an empty list when the calendar is down; the
// client must treat that as unknown rather than fully open.
func (h *BookingHandler) BlackoutDates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	months := h.defaultMonths
	if s := r.URL.Query().Get("months"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			h.writeError(w, "BlackoutDates", apperrors.InvalidInput("invalid months parameter: "+s))
			return
		}
		months = v
	}

	set, err := h.service.BlackoutDates(r.Context(), months)
	if err != nil && set == nil {
		h.writeError(w, "BlackoutDates", err)
		return
	}

	status := http.StatusOK
	resp := BlackoutResponse{
		Success:       err == nil,
		BlackoutDates: set.Dates,
		DateRange:     set.Window,
	}
	if resp.BlackoutDates == nil {
		resp.BlackoutDates = []model.Date{}
	}
	if err != nil {
		status = http.StatusServiceUnavailable
		resp.Error = "Failed to fetch blackout dates"
		h.log.Error("blackout dates unavailable", "months", months, "error", err)
	}

	if writeErr := httputil.WriteJSON(w, status, resp); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", "BlackoutDates", "operation", "WriteJSON", "error", writeErr)
	}
}

// SlackInteraction handles the Approve and Deny buttons of approval messages.
// The signature is checked by middleware before this runs. Slack shows any
// non-2xx answer to the clicking user, so review conflicts are still 200.
func (h *BookingHandler) SlackInteraction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, "SlackInteraction", apperrors.InvalidInput("Invalid form body"))
		return
	}

	action, err := notifier.ParseInteraction(r.PostForm.Get("payload"))
	if err != nil {
		if errors.Is(err, notifier.ErrUnsupportedInteraction) {
			h.log.Debug("ignoring slack interaction", "error", err)
			w.WriteHeader(http.StatusOK)
			return
		}
		h.writeError(w, "SlackInteraction", apperrors.InvalidInput("Invalid interaction payload"))
		return
	}

	reviewAction := service.ActionDeny
	if action.Approve {
		reviewAction = service.ActionApprove
	}

	booking, err := h.service.Review(r.Context(), action.BookingID, reviewAction, action.Reviewer)
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr != nil && appErr.Code == apperrors.CodeConflict {
			h.log.Info("booking already reviewed", "booking_id", action.BookingID, "reviewer", action.Reviewer)
			w.WriteHeader(http.StatusOK)
			return
		}
		h.writeError(w, "SlackInteraction", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "SlackInteraction", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if appErr := apperrors.AsAppError(err); appErr == nil || appErr.StatusCode() >= http.StatusInternalServerError {
		h.log.Error("request failed", "handler", handler, "error", err)
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
