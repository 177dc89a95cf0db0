package model

import "time"

type VIPLevel string

const (
	VIPStandard VIPLevel = "standard"
	VIPGold     VIPLevel = "gold"
	VIPPremium  VIPLevel = "premium"
)

// VIPCustomer is an entry of the hand-maintained VIP list.
type VIPCustomer struct {
	Email         string    `json:"email" bson:"_id"`
	Level         VIPLevel  `json:"vip_level,omitempty" bson:"vip_level,omitempty"`
	TotalBookings int       `json:"total_bookings" bson:"total_bookings"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

type VIPDetails struct {
	IsVIP         bool     `json:"is_vip"`
	Level         VIPLevel `json:"vip_level,omitempty"`
	TotalBookings int      `json:"total_bookings"`
}

// LevelForBookings maps a count of approved stays to a loyalty level.
func LevelForBookings(approved int) VIPLevel {
	switch {
	case approved >= 10:
		return VIPPremium
	case approved >= 5:
		return VIPGold
	default:
		return VIPStandard
	}
}
