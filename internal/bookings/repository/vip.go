package repository

import (
	"context"
	"errors"
	"fmt"

	"paws/pkg/config"
	"paws/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	VIPCollectionName = "Vip_customers"
)

// VIPRepository answers whether a customer qualifies for auto-approval.
// A customer is VIP when listed in the VIP collection or after enough
// approved stays.
type VIPRepository interface {
	IsVIP(ctx context.Context, email string) (bool, error)
	Details(ctx context.Context, email string) (*model.VIPDetails, error)
	IncrementBookings(ctx context.Context, email string) error
}

type mongoVIPRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	bookings   BookingRepository
}

func NewMongoVIPRepository(cfg *config.Config, bookings BookingRepository) VIPRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVIPRepository{
		cfg:        cfg,
		collection: db.Collection(VIPCollectionName),
		bookings:   bookings,
	}
}

func (r *mongoVIPRepository) IsVIP(ctx context.Context, email string) (bool, error) {
	listed, err := r.find(ctx, email)
	if err != nil {
		return false, err
	}
	if listed != nil {
		return true, nil
	}

	approved, err := r.bookings.CountByEmailAndStatus(ctx, email, model.StatusApproved)
	if err != nil {
		return false, fmt.Errorf("failed to count approved bookings: %w", err)
	}
	return approved >= int64(r.cfg.VIPApprovedThreshold), nil
}

func (r *mongoVIPRepository) Details(ctx context.Context, email string) (*model.VIPDetails, error) {
	approved, err := r.bookings.CountByEmailAndStatus(ctx, email, model.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to count approved bookings: %w", err)
	}

	listed, err := r.find(ctx, email)
	if err != nil {
		return nil, err
	}

	return vipDetails(listed, int(approved), r.cfg.VIPApprovedThreshold), nil
}

// vipDetails combines the VIP list entry with the approved stay count. Level
// is only reported for VIP customers.
func vipDetails(listed *model.VIPCustomer, approved, threshold int) *model.VIPDetails {
	details := &model.VIPDetails{
		IsVIP:         listed != nil || approved >= threshold,
		TotalBookings: approved,
	}
	if listed != nil && listed.TotalBookings > details.TotalBookings {
		details.TotalBookings = listed.TotalBookings
	}
	if !details.IsVIP {
		return details
	}
	details.Level = model.LevelForBookings(details.TotalBookings)
	if listed != nil && listed.Level != "" {
		details.Level = listed.Level
	}
	return details
}

// IncrementBookings bumps the stay counter of a listed VIP. Customers not on
// the list are left alone.
func (r *mongoVIPRepository) IncrementBookings(ctx context.Context, email string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$inc": bson.M{"total_bookings": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment vip bookings: %w", err)
	}
	return nil
}

func (r *mongoVIPRepository) find(ctx context.Context, email string) (*model.VIPCustomer, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var vip model.VIPCustomer
	err := r.collection.FindOne(ctx, bson.M{"_id": email}).Decode(&vip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find vip customer: %w", err)
	}
	return &vip, nil
}
