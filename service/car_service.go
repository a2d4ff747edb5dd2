package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carrental_service/authorization"
	"carrental_service/domain"
)

type CarService struct {
	cars   domain.CarStore
	users  domain.UserStore
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewCarService(cars domain.CarStore, users domain.UserStore, logger *logrus.Logger, tracer trace.Tracer) *CarService {
	return &CarService{
		cars:   cars,
		users:  users,
		logger: logger,
		tracer: tracer,
	}
}

func (service *CarService) AddCar(ctx context.Context, ownerID primitive.ObjectID, car *domain.Car) (*domain.Car, error) {
	ctx, span := service.tracer.Start(ctx, "CarService.AddCar")
	defer span.End()

	owner, err := service.users.Get(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError(err, "User not found")
	}
	if !authorization.HasRole(owner, domain.RoleOwner) {
		span.SetStatus(codes.Error, "Unauthorized")
		return nil, &domain.UnauthorizedError{Message: "Unauthorized"}
	}

	if err := car.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	car.Owner = &ownerID
	car.IsAvailable = true
	car.CreatedAt = time.Now()

	created, err := service.cars.Insert(ctx, car)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StorageError{Message: err.Error()}
	}

	service.logger.Println("Car added by owner", ownerID.Hex())
	return created, nil
}

func (service *CarService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Car, error) {
	ctx, span := service.tracer.Start(ctx, "CarService.Get")
	defer span.End()

	car, err := service.cars.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError(err, "Car not found")
	}
	return car, nil
}

// GetListedCars is the public catalog: available cars that still have an
// owner.
func (service *CarService) GetListedCars(ctx context.Context) ([]*domain.Car, error) {
	ctx, span := service.tracer.Start(ctx, "CarService.GetListedCars")
	defer span.End()

	cars, err := service.cars.GetListed(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StorageError{Message: err.Error()}
	}
	return cars, nil
}

func (service *CarService) GetOwnerCars(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.Car, error) {
	ctx, span := service.tracer.Start(ctx, "CarService.GetOwnerCars")
	defer span.End()

	owner, err := service.users.Get(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError(err, "User not found")
	}
	if !authorization.HasRole(owner, domain.RoleOwner) {
		span.SetStatus(codes.Error, "Unauthorized")
		return nil, &domain.UnauthorizedError{Message: "Unauthorized"}
	}

	cars, err := service.cars.GetByOwner(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StorageError{Message: err.Error()}
	}
	return cars, nil
}

// ToggleAvailability flips the date-independent isAvailable flag.
func (service *CarService) ToggleAvailability(ctx context.Context, carID, actingUserID primitive.ObjectID) (*domain.Car, error) {
	ctx, span := service.tracer.Start(ctx, "CarService.ToggleAvailability")
	defer span.End()

	car, err := service.cars.Get(ctx, carID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError(err, "Car not found")
	}

	if !authorization.IsCarOwner(car, actingUserID) {
		span.SetStatus(codes.Error, "Unauthorized")
		return nil, &domain.UnauthorizedError{Message: "Unauthorized"}
	}

	car.IsAvailable = !car.IsAvailable
	if err := service.cars.Update(ctx, car); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError(err, "Car not found")
	}
	return car, nil
}

// DeleteCar delists the car: the owner reference is cleared and the
// availability flag dropped. The record stays because historical
// bookings reference it.
func (service *CarService) DeleteCar(ctx context.Context, carID, actingUserID primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "CarService.DeleteCar")
	defer span.End()

	car, err := service.cars.Get(ctx, carID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return storeError(err, "Car not found")
	}

	if !authorization.IsCarOwner(car, actingUserID) {
		span.SetStatus(codes.Error, "Unauthorized")
		return &domain.UnauthorizedError{Message: "Unauthorized"}
	}

	car.Owner = nil
	car.IsAvailable = false
	if err := service.cars.Update(ctx, car); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return storeError(err, "Car not found")
	}

	service.logger.Println("Car delisted:", carID.Hex())
	return nil
}
