package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarStore interface {
	Insert(ctx context.Context, car *Car) (*Car, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Car, error)
	// GetListed returns every car that is flagged available and still has
	// an owner, regardless of location.
	GetListed(ctx context.Context) ([]*Car, error)
	// GetAvailableByLocation filters on location and the isAvailable flag
	// only. Date-based availability is the booking service's job.
	GetAvailableByLocation(ctx context.Context, location string) ([]*Car, error)
	GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*Car, error)
	Update(ctx context.Context, car *Car) error
}
