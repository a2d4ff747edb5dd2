package domain

import (
	"encoding/json"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name" validate:"required,min=2,max=50"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Password  string             `bson:"password" json:"password,omitempty" validate:"required,min=8"`
	Role      UserRole           `bson:"role" json:"role"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleOwner UserRole = "owner"
)

type Car struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// Owner is nil once the car is delisted. The record stays because
	// historical bookings keep referencing it.
	Owner           *primitive.ObjectID `bson:"owner" json:"owner"`
	Brand           string              `bson:"brand" json:"brand" validate:"required"`
	Model           string              `bson:"model" json:"model" validate:"required"`
	Year            int                 `bson:"year" json:"year" validate:"required,gte=1950"`
	Category        string              `bson:"category" json:"category" validate:"required"`
	SeatingCapacity int                 `bson:"seatingCapacity" json:"seatingCapacity" validate:"required,gt=0"`
	FuelType        string              `bson:"fuelType" json:"fuelType" validate:"required"`
	Transmission    string              `bson:"transmission" json:"transmission" validate:"required"`
	PricePerDay     float64             `bson:"pricePerDay" json:"pricePerDay" validate:"required,gt=0"`
	Location        string              `bson:"location" json:"location" validate:"required"`
	Description     string              `bson:"description,omitempty" json:"description,omitempty"`
	Image           string              `bson:"image,omitempty" json:"image,omitempty"`
	IsAvailable     bool                `bson:"isAvailable" json:"isAvailable"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
}

type Booking struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Car        primitive.ObjectID `bson:"car" json:"car"`
	User       primitive.ObjectID `bson:"user" json:"user"`
	Owner      primitive.ObjectID `bson:"owner" json:"owner"`
	PickupDate time.Time          `bson:"pickupDate" json:"pickupDate"`
	ReturnDate time.Time          `bson:"returnDate" json:"returnDate"`
	Status     BookingStatus      `bson:"status" json:"status"`
	Price      float64            `bson:"price" json:"price"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

func (status BookingStatus) Valid() bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Overlaps reports whether the booked period intersects [pickup, ret].
// Bounds are inclusive, so a same-day handoff counts as a conflict.
func (b *Booking) Overlaps(pickup, ret time.Time) bool {
	return !b.PickupDate.After(ret) && !b.ReturnDate.Before(pickup)
}

// BookingDetails is a booking with its referenced documents resolved,
// the way the API returns bookings to clients.
type BookingDetails struct {
	ID         primitive.ObjectID `json:"id"`
	Car        *Car               `json:"car"`
	User       *User              `json:"user,omitempty"`
	Owner      primitive.ObjectID `json:"owner"`
	PickupDate time.Time          `json:"pickupDate"`
	ReturnDate time.Time          `json:"returnDate"`
	Status     BookingStatus      `json:"status"`
	Price      float64            `json:"price"`
	CreatedAt  time.Time          `json:"createdAt"`
}

type DashboardData struct {
	TotalCars         int               `json:"totalCars"`
	TotalBookings     int               `json:"totalBookings"`
	PendingBookings   int               `json:"pendingBookings"`
	CompletedBookings int               `json:"completedBookings"`
	RecentBookings    []*BookingDetails `json:"recentBookings"`
	MonthlyRevenue    float64           `json:"monthlyRevenue"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Claims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AccountVerification struct {
	UserToken string `json:"user_token"`
	MailToken string `json:"mail_token"`
}

func (user *User) Validate() error {
	validate := validator.New()
	return validate.Struct(user)
}

func (car *Car) Validate() error {
	validate := validator.New()
	return validate.Struct(car)
}

func (car *Car) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(car)
}

func (car *Car) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(car)
}

func (b *Booking) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(b)
}

func (b *Booking) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(b)
}
