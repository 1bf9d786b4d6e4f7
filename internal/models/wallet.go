package models

import "time"

// PaymentMethod is a saved card or account of a user.
type PaymentMethod struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Brand     string    `bson:"brand" json:"brand"`
	Last4     string    `bson:"last4" json:"last4"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	Deleted   bool      `bson:"deleted" json:"-"`
}

// Wallet holds per-user payment preferences. One document per user, keyed by user ID.
type Wallet struct {
	UserID               string    `bson:"_id" json:"user_id"`
	DefaultPaymentMethod string    `bson:"default_payment_method,omitempty" json:"default_payment_method,omitempty"`
	UpdatedAt            time.Time `bson:"updated_at" json:"updated_at"`
}
