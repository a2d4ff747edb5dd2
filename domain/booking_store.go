package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStore interface {
	Insert(ctx context.Context, booking *Booking) (*Booking, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	// GetOverlapping returns the non-cancelled bookings of a car whose
	// closed [pickupDate, returnDate] interval intersects [pickup, ret].
	GetOverlapping(ctx context.Context, carID primitive.ObjectID, pickup, ret time.Time) ([]*Booking, error)
	// GetByUser and GetByOwner return bookings newest-first by createdAt.
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*Booking, error)
	GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*Booking, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status BookingStatus) error
}
