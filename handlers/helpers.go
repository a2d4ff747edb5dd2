package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"carrental_service/authorization"
	"carrental_service/domain"
)

// Dates travel as date-only strings; the service layer works on UTC
// midnights.
const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return date.UTC(), nil
}

func jsonResponse(object interface{}, w http.ResponseWriter) {
	resp, err := json.Marshal(object)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(resp)
}

func writeError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case *domain.ValidationError:
		w.WriteHeader(http.StatusBadRequest)
	case *domain.UnauthorizedError:
		w.WriteHeader(http.StatusUnauthorized)
	case *domain.NotFoundError:
		w.WriteHeader(http.StatusNotFound)
	case *domain.ConflictError:
		w.WriteHeader(http.StatusConflict)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	jsonResponse(map[string]string{"message": err.Error()}, w)
}

// actingUserID resolves the authenticated user from the bearer token.
// Route-level RBAC already ran in the casbin middleware; this only
// recovers the identity for ownership checks.
func actingUserID(r *http.Request) (primitive.ObjectID, error) {
	bearer := r.Header.Get("Authorization")
	bearerToken := strings.Split(bearer, "Bearer ")
	if len(bearerToken) != 2 {
		return primitive.NilObjectID, errors.New("invalid token format")
	}

	token := authorization.GetToken(bearerToken[1])
	if token == nil {
		return primitive.NilObjectID, errors.New("invalid token")
	}

	claims := authorization.GetMapClaims(token.Bytes())
	userID, err := primitive.ObjectIDFromHex(claims["user_id"])
	if err != nil {
		return primitive.NilObjectID, err
	}
	return userID, nil
}
