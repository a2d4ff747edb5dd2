package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carrental_service/domain"
)

const CAR_COLLECTION = "cars"

type CarMongoDBStore struct {
	cars   *mongo.Collection
	tracer trace.Tracer
}

func NewCarMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.CarStore {
	cars := client.Database(DATABASE).Collection(CAR_COLLECTION)
	return &CarMongoDBStore{
		cars:   cars,
		tracer: tracer,
	}
}

func (store *CarMongoDBStore) Insert(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	ctx, span := store.tracer.Start(ctx, "CarStore.Insert")
	defer span.End()

	car.ID = primitive.NewObjectID()
	result, err := store.cars.InsertOne(ctx, car)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	car.ID = result.InsertedID.(primitive.ObjectID)
	return car, nil
}

func (store *CarMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Car, error) {
	ctx, span := store.tracer.Start(ctx, "CarStore.Get")
	defer span.End()

	filter := bson.M{"_id": id}
	return store.filterOne(ctx, filter)
}

func (store *CarMongoDBStore) GetListed(ctx context.Context) ([]*domain.Car, error) {
	ctx, span := store.tracer.Start(ctx, "CarStore.GetListed")
	defer span.End()

	filter := bson.M{"isAvailable": true, "owner": bson.M{"$ne": nil}}
	return store.filter(ctx, filter)
}

func (store *CarMongoDBStore) GetAvailableByLocation(ctx context.Context, location string) ([]*domain.Car, error) {
	ctx, span := store.tracer.Start(ctx, "CarStore.GetAvailableByLocation")
	defer span.End()

	filter := bson.M{"location": location, "isAvailable": true}
	return store.filter(ctx, filter)
}

func (store *CarMongoDBStore) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.Car, error) {
	ctx, span := store.tracer.Start(ctx, "CarStore.GetByOwner")
	defer span.End()

	filter := bson.M{"owner": ownerID}
	return store.filter(ctx, filter)
}

func (store *CarMongoDBStore) Update(ctx context.Context, car *domain.Car) error {
	ctx, span := store.tracer.Start(ctx, "CarStore.Update")
	defer span.End()

	filter := bson.M{"_id": car.ID}
	update := bson.M{"$set": bson.M{
		"owner":       car.Owner,
		"isAvailable": car.IsAvailable,
		"pricePerDay": car.PricePerDay,
		"location":    car.Location,
		"description": car.Description,
		"image":       car.Image,
	}}

	result, err := store.cars.UpdateOne(ctx, filter, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (store *CarMongoDBStore) filter(ctx context.Context, filter interface{}) ([]*domain.Car, error) {
	cursor, err := store.cars.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeCars(ctx, cursor)
}

func (store *CarMongoDBStore) filterOne(ctx context.Context, filter interface{}) (car *domain.Car, err error) {
	result := store.cars.FindOne(ctx, filter)
	err = result.Decode(&car)
	return
}

func decodeCars(ctx context.Context, cursor *mongo.Cursor) (cars []*domain.Car, err error) {
	for cursor.Next(ctx) {
		var car domain.Car
		err = cursor.Decode(&car)
		if err != nil {
			return
		}
		cars = append(cars, &car)
	}
	err = cursor.Err()
	return
}
