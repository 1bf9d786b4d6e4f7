package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"localpro/browse/internal/models"
)

// --- Mocks ---

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) FetchListings(ctx context.Context, kind models.Kind, filter models.FetchFilter) ([]models.Listing, error) {
	args := m.Called(ctx, kind, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) FindListingByID(ctx context.Context, listingID string) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	args := m.Called(ctx, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

// MockActionService
type MockActionService struct {
	mock.Mock
}

func (m *MockActionService) WithdrawApplication(ctx context.Context, userID, applicationID string) error {
	return m.Called(ctx, userID, applicationID).Error(0)
}

func (m *MockActionService) CancelBooking(ctx context.Context, userID, bookingID string) error {
	return m.Called(ctx, userID, bookingID).Error(0)
}

func (m *MockActionService) SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error {
	return m.Called(ctx, userID, methodID).Error(0)
}

func (m *MockActionService) ChangeJobStatus(ctx context.Context, userID, jobID string, status models.JobStatus) error {
	return m.Called(ctx, userID, jobID, status).Error(0)
}

// MockPopularityService
type MockPopularityService struct {
	mock.Mock
}

func (m *MockPopularityService) Increment(ctx context.Context, kind models.Kind, query string) error {
	return m.Called(ctx, kind, query).Error(0)
}

func (m *MockPopularityService) Top(ctx context.Context, kind models.Kind, n int) ([]string, error) {
	args := m.Called(ctx, kind, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPopularityService) SetTerms(ctx context.Context, kind models.Kind, terms []string) error {
	return m.Called(ctx, kind, terms).Error(0)
}

func (m *MockPopularityService) Terms(ctx context.Context, kind models.Kind) ([]string, bool, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Bool(1), args.Error(2)
}

// MockSuggestionService
type MockSuggestionService struct {
	mock.Mock
}

func (m *MockSuggestionService) Suggest(ctx context.Context, kind models.Kind, query string) []string {
	return m.Called(ctx, kind, query).Get(0).([]string)
}

// MockHistoryStore
type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) Load(ctx context.Context, key string) []string {
	return m.Called(ctx, key).Get(0).([]string)
}

func (m *MockHistoryStore) Record(ctx context.Context, key, query string) ([]string, error) {
	args := m.Called(ctx, key, query)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockHistoryStore) Clear(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
