package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"paws/pkg/logger"
	"paws/pkg/model"
	"paws/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"-"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// HasTag reports whether any field failed the given validation tag.
func (v ValidationErrors) HasTag(tag string) bool {
	for _, err := range v {
		if err.Tag == tag {
			return true
		}
	}
	return false
}

// Details renders the errors for an API error body.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		log.Fatal("Failed to register 'phone' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// validatePhone accepts anything the sanitizer can turn into E.164.
func validatePhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || sanitizer.NormalizePhone(value) != ""
}

// Validate checks the shape of the submitted form. Stay dates are only checked
// for format here; range and pattern rules are applied by the service.
func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "phone":
			message = fmt.Sprintf("%s must be a valid phone number", err.Field())
		case "numeric":
			message = fmt.Sprintf("%s must be a number", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
			Tag:     err.Tag(),
		})
	}

	return validationErrors
}
