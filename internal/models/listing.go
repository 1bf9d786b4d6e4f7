package models

import (
	"time"
)

// Kind identifies which list screen a record belongs to.
type Kind string

const (
	KindJob         Kind = "job"
	KindProduct     Kind = "product" // supplies shown in the shop
	KindBooking     Kind = "booking"
	KindContract    Kind = "contract"
	KindRental      Kind = "rental"
	KindService     Kind = "service"
	KindApplication Kind = "application" // job applications
	KindTransaction Kind = "transaction"
)

// AllKinds lists every kind in a stable order.
var AllKinds = []Kind{
	KindJob, KindProduct, KindBooking, KindContract,
	KindRental, KindService, KindApplication, KindTransaction,
}

// ParseKind validates a raw kind string.
func ParseKind(s string) (Kind, bool) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// IsPersonal reports whether records of the kind belong to one user and
// are only ever listed for that user.
func (k Kind) IsPersonal() bool {
	switch k {
	case KindBooking, KindContract, KindApplication, KindTransaction:
		return true
	}
	return false
}

// Listing is any record shown in a list screen: job, product, booking,
// contract, rental, service, application or transaction.
type Listing struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Kind        Kind       `bson:"kind" json:"kind"`
	OwnerID     string     `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Name        string     `bson:"name,omitempty" json:"name,omitempty"`
	Status      string     `bson:"status" json:"status"`
	Category    string     `bson:"category,omitempty" json:"category,omitempty"`
	Price       *float64   `bson:"price,omitempty" json:"price,omitempty"`
	Currency    string     `bson:"currency,omitempty" json:"currency,omitempty"`
	InStock     *bool      `bson:"in_stock,omitempty" json:"in_stock,omitempty"`
	Rating      float64    `bson:"rating,omitempty" json:"rating,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	ScheduledAt *time.Time `bson:"scheduled_at,omitempty" json:"scheduled_at,omitempty"` // bookings
	Deleted     bool       `bson:"deleted" json:"-"`                                     // Soft delete flag
}

// PriceValue returns the price, or 0 when the listing has none.
func (l *Listing) PriceValue() float64 {
	if l.Price == nil {
		return 0
	}
	return *l.Price
}

// Timestamp is the time used for newest-first ordering: the scheduled
// time for bookings, the creation time otherwise.
func (l *Listing) Timestamp() time.Time {
	if l.ScheduledAt != nil {
		return *l.ScheduledAt
	}
	return l.CreatedAt
}

// Statuses that the action endpoints move records between.
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusReviewing = "reviewing"
	ApplicationStatusWithdrawn = "withdrawn"

	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)
