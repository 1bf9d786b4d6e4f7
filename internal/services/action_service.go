package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"localpro/browse/internal/models"
)

const (
	paymentMethodsCollection = "payment_methods"
	walletsCollection        = "wallets"
)

// IActionService defines the single-record actions the list screens perform.
// Each call is one conditional document update: it either applies fully or
// returns an error whose message can be shown to the user.
type IActionService interface {
	WithdrawApplication(ctx context.Context, userID, applicationID string) error
	CancelBooking(ctx context.Context, userID, bookingID string) error
	SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error
	ChangeJobStatus(ctx context.Context, userID, jobID string, status models.JobStatus) error
}

// actionService implements IActionService.
type actionService struct {
	db *mongo.Database
}

// NewActionService creates a new ActionService.
func NewActionService(db *mongo.Database) IActionService {
	return &actionService{db: db}
}

// WithdrawApplication withdraws a pending or in-review job application.
func (s *actionService) WithdrawApplication(ctx context.Context, userID, applicationID string) error {
	return s.moveStatus(ctx, models.KindApplication, userID, applicationID,
		[]string{models.ApplicationStatusPending, models.ApplicationStatusReviewing},
		models.ApplicationStatusWithdrawn)
}

// CancelBooking cancels a pending or confirmed booking.
func (s *actionService) CancelBooking(ctx context.Context, userID, bookingID string) error {
	return s.moveStatus(ctx, models.KindBooking, userID, bookingID,
		[]string{models.BookingStatusPending, models.BookingStatusConfirmed},
		models.BookingStatusCancelled)
}

// ChangeJobStatus moves a job owned by userID along the job status machine.
func (s *actionService) ChangeJobStatus(ctx context.Context, userID, jobID string, status models.JobStatus) error {
	sources := models.JobSourcesFor(status)
	if len(sources) == 0 {
		return fmt.Errorf("%w: a job cannot be moved to %s", ErrNotAllowed, status)
	}
	from := make([]string, 0, len(sources))
	for _, src := range sources {
		from = append(from, string(src))
	}
	return s.moveStatus(ctx, models.KindJob, userID, jobID, from, string(status))
}

// moveStatus sets status to `to` on the caller's record when its current
// status is one of `from`. When nothing matched it looks the record up
// again to explain why.
func (s *actionService) moveStatus(ctx context.Context, kind models.Kind, userID, id string, from []string, to string) error {
	collection := s.db.Collection(listingsCollection)

	filter := bson.M{
		"_id":      id,
		"kind":     kind,
		"owner_id": userID,
		"deleted":  false,
		"status":   bson.M{"$in": from},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("db error updating %s %s: %w", kind, id, err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	var current models.Listing
	checkErr := collection.FindOne(ctx, bson.M{"_id": id, "kind": kind}).Decode(&current)
	if errors.Is(checkErr, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s %s does not exist", ErrNotFound, kind, id)
	}
	if checkErr != nil {
		return fmt.Errorf("db error checking %s %s: %w", kind, id, checkErr)
	}
	if current.OwnerID != userID || current.Deleted {
		// Do not reveal other users' records.
		return fmt.Errorf("%w: %s %s does not exist", ErrNotFound, kind, id)
	}
	if current.Status == to {
		return fmt.Errorf("%w: %s is already %s", ErrNotAllowed, kind, to)
	}
	return fmt.Errorf("%w: a %s that is %s cannot be changed to %s", ErrNotAllowed, kind, current.Status, to)
}

// SetDefaultPaymentMethod makes methodID the user's default payment method.
func (s *actionService) SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error {
	var method models.PaymentMethod
	err := s.db.Collection(paymentMethodsCollection).
		FindOne(ctx, bson.M{"_id": methodID, "user_id": userID, "deleted": false}).
		Decode(&method)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: payment method %s does not exist", ErrNotFound, methodID)
		}
		return fmt.Errorf("error finding payment method %s: %w", methodID, err)
	}

	update := bson.M{
		"$set": bson.M{
			"default_payment_method": method.ID,
			"updated_at":             time.Now().UTC(),
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.db.Collection(walletsCollection).UpdateOne(ctx, bson.M{"_id": userID}, update, opts); err != nil {
		return fmt.Errorf("failed to set default payment method for user %s: %w", userID, err)
	}
	return nil
}
