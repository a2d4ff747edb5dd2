package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carrental_service/domain"
)

const BOOKING_COLLECTION = "bookings"

type BookingMongoDBStore struct {
	bookings *mongo.Collection
	tracer   trace.Tracer
}

func NewBookingMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.BookingStore {
	bookings := client.Database(DATABASE).Collection(BOOKING_COLLECTION)
	return &BookingMongoDBStore{
		bookings: bookings,
		tracer:   tracer,
	}
}

func (store *BookingMongoDBStore) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	ctx, span := store.tracer.Start(ctx, "BookingStore.Insert")
	defer span.End()

	booking.ID = primitive.NewObjectID()
	result, err := store.bookings.InsertOne(ctx, booking)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	booking.ID = result.InsertedID.(primitive.ObjectID)
	return booking, nil
}

func (store *BookingMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	ctx, span := store.tracer.Start(ctx, "BookingStore.Get")
	defer span.End()

	result := store.bookings.FindOne(ctx, bson.M{"_id": id})
	var booking *domain.Booking
	if err := result.Decode(&booking); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return booking, nil
}

// GetOverlapping runs the closed-interval conflict query: an existing
// booking conflicts when its pickupDate <= ret and its returnDate >= pickup.
func (store *BookingMongoDBStore) GetOverlapping(ctx context.Context, carID primitive.ObjectID, pickup, ret time.Time) ([]*domain.Booking, error) {
	ctx, span := store.tracer.Start(ctx, "BookingStore.GetOverlapping")
	defer span.End()

	filter := bson.M{
		"car":        carID,
		"status":     bson.M{"$ne": domain.StatusCancelled},
		"pickupDate": bson.M{"$lte": ret},
		"returnDate": bson.M{"$gte": pickup},
	}
	return store.filter(ctx, filter, nil)
}

func (store *BookingMongoDBStore) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Booking, error) {
	ctx, span := store.tracer.Start(ctx, "BookingStore.GetByUser")
	defer span.End()

	filter := bson.M{"user": userID}
	return store.filter(ctx, filter, newestFirst())
}

func (store *BookingMongoDBStore) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.Booking, error) {
	ctx, span := store.tracer.Start(ctx, "BookingStore.GetByOwner")
	defer span.End()

	filter := bson.M{"owner": ownerID}
	return store.filter(ctx, filter, newestFirst())
}

func (store *BookingMongoDBStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.BookingStatus) error {
	ctx, span := store.tracer.Start(ctx, "BookingStore.UpdateStatus")
	defer span.End()

	update := bson.M{"$set": bson.M{"status": status}}
	result, err := store.bookings.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func (store *BookingMongoDBStore) filter(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*domain.Booking, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = store.bookings.Find(ctx, filter, opts)
	} else {
		cursor, err = store.bookings.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeBookings(ctx, cursor)
}

func decodeBookings(ctx context.Context, cursor *mongo.Cursor) (bookings []*domain.Booking, err error) {
	for cursor.Next(ctx) {
		var booking domain.Booking
		err = cursor.Decode(&booking)
		if err != nil {
			return
		}
		bookings = append(bookings, &booking)
	}
	err = cursor.Err()
	return
}
