package authorization

import (
	"log"
	"os"

	"github.com/cristalhq/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"carrental_service/domain"
)

var jwtKey = []byte(os.Getenv("SECRET_KEY"))

var verifier, _ = jwt.NewVerifierHS(jwt.HS256, jwtKey)

func GetToken(tokenString string) *jwt.Token {
	token, err := jwt.Parse([]byte(tokenString), verifier)
	if err != nil {
		log.Println(err)
	}
	return token
}

func GetMapClaims(tokenBytes []byte) map[string]string {
	var claims map[string]string

	err := jwt.ParseClaims(tokenBytes, verifier, &claims)
	if err != nil {
		log.Println(err)
	}

	return claims
}

// Ownership and role predicates. Every mutating operation checks the
// relevant predicate before touching state and denies on false.

// IsCarOwner reports whether the acting user owns the car. A delisted
// car (nil owner) has no owner, so nobody passes.
func IsCarOwner(car *domain.Car, actingUserID primitive.ObjectID) bool {
	if car == nil || car.Owner == nil {
		return false
	}
	return *car.Owner == actingUserID
}

// IsBookingOwner checks against the owner captured at booking time, not
// the car's current owner.
func IsBookingOwner(booking *domain.Booking, actingUserID primitive.ObjectID) bool {
	if booking == nil {
		return false
	}
	return booking.Owner == actingUserID
}

func HasRole(user *domain.User, role domain.UserRole) bool {
	if user == nil {
		return false
	}
	return user.Role == role
}
