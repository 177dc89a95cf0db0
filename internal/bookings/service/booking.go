package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"paws/internal/availability"
	bookingserrors "paws/internal/bookings/errors"
	"paws/internal/bookings/repository"
	"paws/internal/bookings/validator"
	"paws/internal/rules"
	"paws/pkg/config"
	apperrors "paws/pkg/errors"
	"paws/pkg/model"
	"paws/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionDeny    ReviewAction = "deny"
)

// AvailabilityEngine is the part of availability.Engine the service needs.
type AvailabilityEngine interface {
	CheckRangeAvailability(ctx context.Context, r model.DateRange) (availability.Verdict, error)
	ComputeBlackoutDates(ctx context.Context, horizonMonths int) (*availability.BlackoutSet, error)
	Today() model.Date
}

// Notifier tells staff about requests. Failures never change a decision.
type Notifier interface {
	BookingPending(ctx context.Context, booking *model.Booking, verdict availability.Verdict) error
	BookingReviewed(ctx context.Context, booking *model.Booking) error
}

type AvailabilityResult struct {
	IsAvailable bool     `json:"is_available"`
	Conflicts   []string `json:"conflicts"`
	Message     string   `json:"message"`
}

type BookingService interface {
	Submit(ctx context.Context, req *model.BookingRequest) (*model.Decision, error)
	CheckAvailability(ctx context.Context, startDate, endDate string) (*AvailabilityResult, error)
	BlackoutDates(ctx context.Context, months int) (*availability.BlackoutSet, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, email string, limit int, offset int64) ([]*model.Booking, int64, error)
	Review(ctx context.Context, id string, action ReviewAction, reviewer string) (*model.Booking, error)
	VIPStatus(ctx context.Context, email string) (*model.VIPDetails, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	vipRepo   repository.VIPRepository
	engine    AvailabilityEngine
	notifier  Notifier
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	vipRepo repository.VIPRepository,
	engine AvailabilityEngine,
	notifier Notifier,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		vipRepo:   vipRepo,
		engine:    engine,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
	}
}

// Submit validates the request, checks the calendar, decides a status and
// records it. Validation failures return before the calendar is queried.
func (s *bookingService) Submit(ctx context.Context, req *model.BookingRequest) (*model.Decision, error) {
	s.sanitize(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	stay, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	classification, err := rules.ValidateStay(stay, s.engine.Today())
	if err != nil {
		s.cfg.Log.Info("Booking request rejected by stay rules",
			"start_date", req.StartDate,
			"end_date", req.EndDate,
			"error", err,
		)
		return nil, ruleError(err, classification)
	}

	verdict, err := s.engine.CheckRangeAvailability(ctx, stay)
	if err != nil {
		return nil, apperrors.InvalidDateRange(err.Error(), err)
	}

	isVIP := s.lookupVIP(ctx, req.Email)
	status := Decide(verdict, isVIP)

	booking := newBooking(req, classification.Type, isVIP, status)
	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to save booking request",
			"email", req.Email,
			"status", status,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to save booking request", err)
	}

	s.cfg.Log.Info("Booking request decided",
		"id", booking.ID,
		"status", status,
		"booking_type", classification.Type,
		"is_vip", isVIP,
		"available", verdict.Available,
		"conflicts", len(verdict.Conflicts),
	)

	if status == model.StatusPending {
		if err := s.notifier.BookingPending(ctx, booking, verdict); err != nil {
			s.cfg.Log.Error("Failed to notify staff about pending booking",
				"id", booking.ID,
				"error", err,
			)
		}
	}

	return &model.Decision{
		BookingID:   booking.ID,
		Status:      status,
		Message:     StatusMessage(status),
		BookingType: classification.Type,
	}, nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, startDate, endDate string) (*AvailabilityResult, error) {
	stay, err := parseStay(startDate, endDate)
	if err != nil {
		return nil, err
	}

	verdict, err := s.engine.CheckRangeAvailability(ctx, stay)
	if err != nil {
		return nil, apperrors.InvalidDateRange(err.Error(), err)
	}

	return &AvailabilityResult{
		IsAvailable: verdict.Available,
		Conflicts:   verdict.Conflicts,
		Message:     availability.FormatAvailabilityMessage(stay, verdict),
	}, nil
}

// BlackoutDates returns the set even when the calendar failed, together with
// an Unavailable error, so callers can still render the window.
func (s *bookingService) BlackoutDates(ctx context.Context, months int) (*availability.BlackoutSet, error) {
	set, err := s.engine.ComputeBlackoutDates(ctx, months)
	if err == nil {
		return set, nil
	}
	if errors.Is(err, availability.ErrInvalidHorizon) {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return set, apperrors.UnavailableWithCause("Calendar", err)
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}

	return booking, nil
}

// VIPStatus reports the loyalty standing staff see next to a request.
func (s *bookingService) VIPStatus(ctx context.Context, email string) (*model.VIPDetails, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	details, err := s.vipRepo.Details(ctx, email)
	if err != nil {
		return nil, apperrors.Internal("Failed to look up VIP status", err)
	}
	return details, nil
}

func (s *bookingService) GetAll(ctx context.Context, email string, limit int, offset int64) ([]*model.Booking, int64, error) {
	email = sanitizer.NormalizeEmail(email)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, email)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, email, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Review applies a staff decision to a PENDING request. Approvals also bump
// the stay counter of listed VIPs in the same transaction.
func (s *bookingService) Review(ctx context.Context, id string, action ReviewAction, reviewer string) (*model.Booking, error) {
	var status model.BookingStatus
	switch action {
	case ActionApprove:
		status = model.StatusApproved
	case ActionDeny:
		status = model.StatusRejected
	default:
		return nil, apperrors.InvalidInput(bookingserrors.ErrInvalidReviewAction.Error() + ": " + string(action))
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var reviewed *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.repo.Review(sessCtx, id, status, reviewer)
		if err != nil {
			return s.mapRepoError(err, id, "Failed to review booking")
		}
		if status == model.StatusApproved {
			if err := s.vipRepo.IncrementBookings(sessCtx, booking.Email); err != nil {
				return apperrors.Internal("Failed to update customer history", err)
			}
		}
		reviewed = booking
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Booking review failed", "id", id, "action", action, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking reviewed", "id", id, "status", status, "reviewed_by", reviewer)

	if err := s.notifier.BookingReviewed(ctx, reviewed); err != nil {
		s.cfg.Log.Error("Failed to publish booking review", "id", id, "error", err)
	}
	return reviewed, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.ParentName = sanitizer.NormalizeName(req.ParentName)
	req.DogName = sanitizer.NormalizeName(req.DogName)
	req.DogBreed = sanitizer.NormalizeName(req.DogBreed)
	req.DogAge = sanitizer.TrimAndNormalize(req.DogAge)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Notes = sanitizer.NormalizeNotes(req.Notes)
	req.StartDate = sanitizer.TrimAndNormalize(req.StartDate)
	req.EndDate = sanitizer.TrimAndNormalize(req.EndDate)
	if phone := sanitizer.NormalizePhone(req.Phone); phone != "" {
		req.Phone = phone
	}
}

func (s *bookingService) validate(req *model.BookingRequest) error {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			if verrs.HasTag("datetime") {
				return apperrors.InvalidDateRange("Dates must be in YYYY-MM-DD format", verrs)
			}
			return apperrors.Validation("Booking request validation failed", verrs.Details())
		}
		return apperrors.Validation("Booking request validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// lookupVIP treats a failed lookup as non-VIP so the request falls back to
// manual review.
func (s *bookingService) lookupVIP(ctx context.Context, email string) bool {
	isVIP, err := s.vipRepo.IsVIP(ctx, email)
	if err != nil {
		s.cfg.Log.Warn("VIP lookup failed, treating customer as standard", "error", err)
		return false
	}
	return isVIP
}

func (s *bookingService) mapRepoError(err error, id, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrAlreadyReviewed):
		return apperrors.Conflict("Booking has already been reviewed")
	default:
		return apperrors.Internal(message, err)
	}
}

func parseStay(startDate, endDate string) (model.DateRange, error) {
	stay, err := model.ParseDateRange(startDate, endDate)
	if err != nil {
		if errors.Is(err, model.ErrInvalidDate) {
			return model.DateRange{}, apperrors.InvalidDateRange("Dates must be in YYYY-MM-DD format", err)
		}
		return model.DateRange{}, apperrors.InvalidDateRange("End date must be after start date", err)
	}
	return stay, nil
}

func ruleError(err error, c rules.Classification) error {
	switch {
	case errors.Is(err, rules.ErrPastDateRequested):
		return apperrors.PastDateRequested("Start date cannot be in the past")
	case errors.Is(err, rules.ErrRulePatternViolation):
		return apperrors.RulePatternViolation(c.Reason)
	default:
		return apperrors.InvalidDateRange("End date must be after start date", err)
	}
}

func newBooking(req *model.BookingRequest, bookingType model.BookingType, isVIP bool, status model.BookingStatus) *model.Booking {
	booking := &model.Booking{
		ParentName:  req.ParentName,
		Email:       req.Email,
		Phone:       req.Phone,
		DogName:     req.DogName,
		DogBreed:    req.DogBreed,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		BookingType: bookingType,
		IsVIP:       isVIP,
		Status:      status,
		Notes:       req.Notes,
	}
	if age, err := strconv.Atoi(req.DogAge); err == nil {
		booking.DogAge = &age
	}
	return booking
}
