package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed.UTC()
}

func TestBookingOverlaps(t *testing.T) {
	booking := &Booking{
		PickupDate: date("2024-03-10"),
		ReturnDate: date("2024-03-15"),
	}

	cases := []struct {
		name     string
		pickup   string
		ret      string
		overlaps bool
	}{
		{"disjoint before", "2024-03-01", "2024-03-09", false},
		{"disjoint after", "2024-03-16", "2024-03-20", false},
		{"shared start boundary", "2024-03-05", "2024-03-10", true},
		{"shared end boundary", "2024-03-15", "2024-03-20", true},
		{"inside", "2024-03-11", "2024-03-14", true},
		{"surrounding", "2024-03-01", "2024-03-30", true},
		{"identical", "2024-03-10", "2024-03-15", true},
		{"single day inside", "2024-03-12", "2024-03-12", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlaps, booking.Overlaps(date(tc.pickup), date(tc.ret)))
		})
	}
}

func TestBookingStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusConfirmed.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, BookingStatus("archived").Valid())
	assert.False(t, BookingStatus("").Valid())
}

func TestCarValidate(t *testing.T) {
	car := &Car{
		Brand:           "Audi",
		Model:           "A4",
		Year:            2020,
		Category:        "Sedan",
		SeatingCapacity: 5,
		FuelType:        "Petrol",
		Transmission:    "Manual",
		PricePerDay:     85,
		Location:        "Hamburg",
	}
	assert.NoError(t, car.Validate())

	car.PricePerDay = 0
	assert.Error(t, car.Validate())
}

func TestUserValidate(t *testing.T) {
	user := &User{
		Name:     "Jamie Doe",
		Email:    "jamie@example.com",
		Password: "long enough password",
	}
	assert.NoError(t, user.Validate())

	user.Email = "not-an-email"
	assert.Error(t, user.Validate())
}
