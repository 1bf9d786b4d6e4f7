package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"localpro/browse/internal/db"
	"localpro/browse/internal/models"
)

const (
	listingsCollection = "listings"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// IListingService defines the listing fetch operations backing the list screens.
type IListingService interface {
	// FetchListings returns one page of listings of a kind. It never returns
	// an error for "no results"; it is a pure read and safe to retry.
	FetchListings(ctx context.Context, kind models.Kind, filter models.FetchFilter) ([]models.Listing, error)
	FindListingByID(ctx context.Context, listingID string) (*models.Listing, error)
	CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error)
}

// listingService implements IListingService.
type listingService struct {
	db *mongo.Database
}

// NewListingService creates a new ListingService.
func NewListingService(db *mongo.Database) IListingService {
	return &listingService{db: db}
}

// BuildListingQuery translates a fetch filter into a Mongo filter and find options.
func BuildListingQuery(kind models.Kind, f models.FetchFilter) (bson.M, *options.FindOptions) {
	filter := bson.M{
		"kind":    kind,
		"deleted": false,
	}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.Status != "" {
		filter["status"] = caseInsensitiveEquals(f.Status)
	}
	if f.Category != "" {
		filter["category"] = caseInsensitiveEquals(f.Category)
	}
	if f.Search != "" {
		pattern := regexFold(regexp.QuoteMeta(f.Search))
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"name": pattern},
		}
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	// _id as the final key keeps paging stable across equal sort values.
	var sort bson.D
	switch f.Sort {
	case models.SortPriceAsc:
		sort = bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case models.SortPriceDesc:
		sort = bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	default:
		sort = newestFirst(kind)
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	return filter, opts
}

// newestFirst matches Listing.Timestamp so a page holds the records the
// client would order first. Bookings without a scheduled time sort after
// the scheduled ones, by creation time.
func newestFirst(kind models.Kind) bson.D {
	if kind == models.KindBooking {
		return bson.D{{Key: "scheduled_at", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
}

func caseInsensitiveEquals(v string) bson.M {
	return regexFold("^" + regexp.QuoteMeta(v) + "$")
}

func regexFold(pattern string) bson.M {
	return bson.M{"$regex": pattern, "$options": "i"}
}

// FetchListings implements IListingService.
func (s *listingService) FetchListings(ctx context.Context, kind models.Kind, f models.FetchFilter) ([]models.Listing, error) {
	filter, opts := BuildListingQuery(kind, f)

	cursor, err := s.db.Collection(listingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s listing query: %w", kind, err)
	}
	defer cursor.Close(ctx)

	results := make([]models.Listing, 0)
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode %s listings: %w", kind, err)
	}
	return results, nil
}

// FindListingByID finds a non-deleted listing by its ID.
func (s *listingService) FindListingByID(ctx context.Context, listingID string) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Collection(listingsCollection).FindOne(ctx, bson.M{"_id": listingID, "deleted": false}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("listing %s: %w", listingID, ErrNotFound)
		}
		return nil, fmt.Errorf("error finding listing by ID %s: %w", listingID, err)
	}
	return &listing, nil
}

// CreateListing inserts a listing, generating its ID. The catalog owns
// listing creation; this exists for seeding and tests.
func (s *listingService) CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if _, ok := models.ParseKind(string(listing.Kind)); !ok {
		return nil, fmt.Errorf("invalid listing kind %q", listing.Kind)
	}
	collection := s.db.Collection(listingsCollection)
	now := time.Now().UTC()

	newListing := *listing
	newListing.Deleted = false
	if newListing.CreatedAt.IsZero() {
		newListing.CreatedAt = now
	}
	newListing.UpdatedAt = now

	operation := func() error {
		newListing.ID = uuid.NewString()
		_, insertErr := collection.InsertOne(ctx, &newListing)
		return insertErr
	}

	if err := db.Try(ctx, operation); err != nil {
		return nil, fmt.Errorf("failed to insert %s listing (last attempted ID: %s) after multiple retries: %w",
			newListing.Kind, newListing.ID, err)
	}
	return &newListing, nil
}
