package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "paws/internal/bookings/errors"
	"paws/pkg/config"
	mongotx "paws/pkg/db/mongo"
	"paws/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Booking_requests"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, email string, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, email string) (int64, error)
	CountByEmailAndStatus(ctx context.Context, email string, status model.BookingStatus) (int64, error)
	Review(ctx context.Context, id string, status model.BookingStatus, reviewedBy string) (*model.Booking, error)
	SetSlackMessageTS(ctx context.Context, id string, ts string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext cannot be wrapped without breaking transaction semantics,
// so it is returned unchanged with a no-op cancel.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, email string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, emailFilter(email), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, email string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, emailFilter(email))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) CountByEmailAndStatus(ctx context.Context, email string, status model.BookingStatus) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"email": email, "status": status}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by status: %w", err)
	}
	return count, nil
}

// Review moves a PENDING booking to its reviewed status. Any other current
// status yields ErrAlreadyReviewed so a decision is never overwritten.
func (r *mongoBookingRepository) Review(ctx context.Context, id string, status model.BookingStatus, reviewedBy string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": model.StatusPending}
	update := bson.M{
		"$set": bson.M{
			"status":      status,
			"reviewed_by": reviewedBy,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to review booking: %w", err)
	}

	exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return nil, fmt.Errorf("failed to check booking existence: %w", err)
	}
	if exists == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return nil, bookingserrors.ErrAlreadyReviewed
}

func (r *mongoBookingRepository) SetSlackMessageTS(ctx context.Context, id string, ts string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"slack_message_ts": ts,
			"updated_at":       time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to set slack message ts: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func emailFilter(email string) bson.M {
	if email == "" {
		return bson.M{}
	}
	return bson.M{"email": email}
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
