package authorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"carrental_service/domain"
)

func TestIsCarOwner(t *testing.T) {
	ownerID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	car := &domain.Car{ID: primitive.NewObjectID(), Owner: &ownerID}

	assert.True(t, IsCarOwner(car, ownerID))
	assert.False(t, IsCarOwner(car, otherID))
	assert.False(t, IsCarOwner(nil, ownerID))
}

func TestIsCarOwnerDelistedCar(t *testing.T) {
	ownerID := primitive.NewObjectID()
	delisted := &domain.Car{ID: primitive.NewObjectID(), Owner: nil}

	assert.False(t, IsCarOwner(delisted, ownerID))
}

func TestIsBookingOwner(t *testing.T) {
	ownerID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	booking := &domain.Booking{ID: primitive.NewObjectID(), Owner: ownerID}

	assert.True(t, IsBookingOwner(booking, ownerID))
	assert.False(t, IsBookingOwner(booking, otherID))
	assert.False(t, IsBookingOwner(nil, ownerID))
}

func TestIsBookingOwnerSurvivesCarDelisting(t *testing.T) {
	// The booking carries its own owner reference, so the check works
	// even after the car's owner field is cleared.
	ownerID := primitive.NewObjectID()
	booking := &domain.Booking{ID: primitive.NewObjectID(), Owner: ownerID}
	delistedCar := &domain.Car{ID: booking.Car, Owner: nil}

	assert.False(t, IsCarOwner(delistedCar, ownerID))
	assert.True(t, IsBookingOwner(booking, ownerID))
}

func TestHasRole(t *testing.T) {
	owner := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleOwner}
	renter := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleUser}

	assert.True(t, HasRole(owner, domain.RoleOwner))
	assert.False(t, HasRole(renter, domain.RoleOwner))
	assert.True(t, HasRole(renter, domain.RoleUser))
	assert.False(t, HasRole(nil, domain.RoleUser))
}
