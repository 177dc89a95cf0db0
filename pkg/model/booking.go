package model

import (
	"time"
)

type BookingStatus string

const (
	StatusAutoApproved BookingStatus = "AUTO_APPROVED"
	StatusPending      BookingStatus = "PENDING"
	StatusDenied       BookingStatus = "DENIED"

	// Reached only through manual review of a PENDING request.
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

func (s BookingStatus) IsTerminal() bool {
	return s != StatusPending
}

type BookingType string

const (
	BookingTypeWeeknight      BookingType = "weeknight"
	BookingTypeWeekendPackage BookingType = "weekend"
	BookingTypeInvalid        BookingType = "invalid"
)

// BookingRequest is what a customer submits through the intake form.
type BookingRequest struct {
	ParentName string `json:"parentName" validate:"required,min=1,max=100"`
	DogName    string `json:"dogName" validate:"required,min=1,max=100"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,max=32,phone"`
	DogBreed   string `json:"dogBreed,omitempty" validate:"omitempty,max=100"`
	DogAge     string `json:"dogAge,omitempty" validate:"omitempty,numeric,max=3"`
	StartDate  string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Notes      string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Booking is the persisted record of a decided request.
type Booking struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty"`
	ParentName     string        `json:"parent_name" bson:"parent_name"`
	Email          string        `json:"email" bson:"email"`
	Phone          string        `json:"phone,omitempty" bson:"phone,omitempty"`
	DogName        string        `json:"dog_name" bson:"dog_name"`
	DogBreed       string        `json:"dog_breed,omitempty" bson:"dog_breed,omitempty"`
	DogAge         *int          `json:"dog_age,omitempty" bson:"dog_age,omitempty"`
	StartDate      string        `json:"start_date" bson:"start_date"`
	EndDate        string        `json:"end_date" bson:"end_date"`
	BookingType    BookingType   `json:"booking_type" bson:"booking_type"`
	IsVIP          bool          `json:"is_vip" bson:"is_vip"`
	Status         BookingStatus `json:"status" bson:"status"`
	Notes          string        `json:"notes,omitempty" bson:"notes,omitempty"`
	SlackMessageTS string        `json:"slack_message_ts,omitempty" bson:"slack_message_ts,omitempty"`
	ReviewedBy     string        `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) Range() (DateRange, error) {
	return ParseDateRange(b.StartDate, b.EndDate)
}

// Decision is returned to the customer after a submission.
type Decision struct {
	BookingID   string        `json:"bookingId"`
	Status      BookingStatus `json:"status"`
	Message     string        `json:"message"`
	BookingType BookingType   `json:"bookingType"`
}
