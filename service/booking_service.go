package application

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carrental_service/authorization"
	"carrental_service/domain"
)

type BookingService struct {
	bookings domain.BookingStore
	cars     domain.CarStore
	users    domain.UserStore
	logger   *logrus.Logger
	tracer   trace.Tracer

	// One mutex per car serializes the availability re-check and the
	// insert in CreateBooking. The store runs as a single instance, so
	// in-process exclusion is enough to prevent double-booking.
	locksMu  sync.Mutex
	carLocks map[string]*sync.Mutex
}

func NewBookingService(bookings domain.BookingStore, cars domain.CarStore, users domain.UserStore, logger *logrus.Logger, tracer trace.Tracer) *BookingService {
	return &BookingService{
		bookings: bookings,
		cars:     cars,
		users:    users,
		logger:   logger,
		tracer:   tracer,
		carLocks: make(map[string]*sync.Mutex),
	}
}

// IsAvailable reports whether the car has no non-cancelled booking whose
// closed [pickupDate, returnDate] interval intersects [pickup, ret].
// Touching endpoints count as a conflict, so same-day handoffs are not
// possible.
func (service *BookingService) IsAvailable(ctx context.Context, carID primitive.ObjectID, pickup, ret time.Time) (bool, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.IsAvailable")
	defer span.End()

	overlapping, err := service.bookings.GetOverlapping(ctx, carID, pickup, ret)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, &domain.StorageError{Message: err.Error()}
	}
	return len(overlapping) == 0, nil
}

// FindAvailableCars filters cars by location and the isAvailable flag,
// then checks every candidate against existing bookings. The per-car
// checks run concurrently.
func (service *BookingService) FindAvailableCars(ctx context.Context, location string, pickup, ret time.Time) ([]*domain.Car, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.FindAvailableCars")
	defer span.End()

	if err := validateDateRange(pickup, ret); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	cars, err := service.cars.GetAvailableByLocation(ctx, location)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StorageError{Message: err.Error()}
	}

	type availability struct {
		car  *domain.Car
		free bool
		err  error
	}

	results := make(chan availability, len(cars))
	var wg sync.WaitGroup
	for _, car := range cars {
		wg.Add(1)
		go func(car *domain.Car) {
			defer wg.Done()
			free, err := service.IsAvailable(ctx, car.ID, pickup, ret)
			results <- availability{car: car, free: free, err: err}
		}(car)
	}
	wg.Wait()
	close(results)

	available := make([]*domain.Car, 0, len(cars))
	for result := range results {
		if result.err != nil {
			return nil, result.err
		}
		if result.free {
			available = append(available, result.car)
		}
	}
	return available, nil
}

// CreateBooking re-checks availability under the car's lock, prices the
// stay and persists the booking with status pending. The car's owner is
// denormalized onto the booking at creation time; later owner changes on
// the car never touch past bookings.
func (service *BookingService) CreateBooking(ctx context.Context, carID, renterID primitive.ObjectID, pickup, ret time.Time) (*domain.Booking, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.CreateBooking")
	defer span.End()

	if err := validateDateRange(pickup, ret); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	lock := service.carLock(carID)
	lock.Lock()
	defer lock.Unlock()

	free, err := service.IsAvailable(ctx, carID, pickup, ret)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !free {
		span.SetStatus(codes.Error, "Car is not available")
		return nil, &domain.ConflictError{Message: "Car is not available"}
	}

	car, err := service.cars.Get(ctx, carID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError(err, "Car not found")
	}
	if car.Owner == nil || !car.IsAvailable {
		span.SetStatus(codes.Error, "Car is not available")
		return nil, &domain.ConflictError{Message: "Car is not available"}
	}

	days := numberOfDays(pickup, ret)
	price := car.PricePerDay * float64(days)

	booking := &domain.Booking{
		Car:        carID,
		User:       renterID,
		Owner:      *car.Owner,
		PickupDate: pickup,
		ReturnDate: ret,
		Status:     domain.StatusPending,
		Price:      price,
		CreatedAt:  time.Now(),
	}

	created, err := service.bookings.Insert(ctx, booking)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StorageError{Message: err.Error()}
	}

	service.logger.Println("Booking created for car", carID.Hex())
	return created, nil
}

// GetUserBookings returns the renter's bookings newest-first with the
// car resolved. Delisted cars resolve normally, they just carry no
// owner.
func (service *BookingService) GetUserBookings(ctx context.Context, userID primitive.ObjectID) ([]*domain.BookingDetails, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.GetUserBookings")
	defer span.End()

	bookings, err := service.bookings.GetByUser(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StorageError{Message: err.Error()}
	}
	return service.resolveBookings(ctx, bookings, false)
}

// GetOwnerBookings requires the owner role. Every booking is resolved
// with its car and its renter, with the renter's credential hash
// stripped.
func (service *BookingService) GetOwnerBookings(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.BookingDetails, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.GetOwnerBookings")
	defer span.End()

	if err := service.requireOwner(ctx, ownerID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	bookings, err := service.bookings.GetByOwner(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StorageError{Message: err.Error()}
	}
	return service.resolveBookings(ctx, bookings, true)
}

// ChangeStatus moves a booking to any of the three statuses. Only the
// owner stored on the booking may do it; no further transition rule is
// enforced, the owner can reopen a cancelled or confirmed booking.
func (service *BookingService) ChangeStatus(ctx context.Context, bookingID, actingUserID primitive.ObjectID, newStatus domain.BookingStatus) (*domain.Booking, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.ChangeStatus")
	defer span.End()

	if !newStatus.Valid() {
		span.SetStatus(codes.Error, "invalid status")
		return nil, &domain.ValidationError{Message: "Invalid booking status"}
	}

	booking, err := service.bookings.Get(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError(err, "Booking not found")
	}

	if !authorization.IsBookingOwner(booking, actingUserID) {
		span.SetStatus(codes.Error, "Unauthorized")
		return nil, &domain.UnauthorizedError{Message: "Unauthorized"}
	}

	if err := service.bookings.UpdateStatus(ctx, bookingID, newStatus); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError(err, "Booking not found")
	}

	booking.Status = newStatus
	return booking, nil
}

// Dashboard aggregates the owner's cars and bookings. monthlyRevenue
// keeps its historical name: it sums the price of every confirmed
// booking ever, not a calendar-month window.
func (service *BookingService) Dashboard(ctx context.Context, ownerID primitive.ObjectID) (*domain.DashboardData, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.Dashboard")
	defer span.End()

	if err := service.requireOwner(ctx, ownerID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	cars, err := service.cars.GetByOwner(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StorageError{Message: err.Error()}
	}

	bookings, err := service.bookings.GetByOwner(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StorageError{Message: err.Error()}
	}

	dashboard := &domain.DashboardData{
		TotalCars:     len(cars),
		TotalBookings: len(bookings),
	}

	for _, booking := range bookings {
		switch booking.Status {
		case domain.StatusPending:
			dashboard.PendingBookings++
		case domain.StatusConfirmed:
			dashboard.CompletedBookings++
			dashboard.MonthlyRevenue += booking.Price
		}
	}

	recent := bookings
	if len(recent) > 3 {
		recent = recent[:3]
	}
	dashboard.RecentBookings, err = service.resolveBookings(ctx, recent, false)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return dashboard, nil
}

func (service *BookingService) requireOwner(ctx context.Context, userID primitive.ObjectID) error {
	user, err := service.users.Get(ctx, userID)
	if err != nil {
		return storeError(err, "User not found")
	}
	if !authorization.HasRole(user, domain.RoleOwner) {
		return &domain.UnauthorizedError{Message: "Unauthorized"}
	}
	return nil
}

func (service *BookingService) resolveBookings(ctx context.Context, bookings []*domain.Booking, withRenter bool) ([]*domain.BookingDetails, error) {
	details := make([]*domain.BookingDetails, 0, len(bookings))
	for _, booking := range bookings {
		car, err := service.cars.Get(ctx, booking.Car)
		if err != nil {
			service.logger.Println("Error resolving car for booking:", err)
			return nil, storeError(err, "Car not found")
		}

		resolved := &domain.BookingDetails{
			ID:         booking.ID,
			Car:        car,
			Owner:      booking.Owner,
			PickupDate: booking.PickupDate,
			ReturnDate: booking.ReturnDate,
			Status:     booking.Status,
			Price:      booking.Price,
			CreatedAt:  booking.CreatedAt,
		}

		if withRenter {
			renter, err := service.users.Get(ctx, booking.User)
			if err != nil {
				service.logger.Println("Error resolving renter for booking:", err)
				return nil, storeError(err, "User not found")
			}
			renter.Password = ""
			resolved.User = renter
		}

		details = append(details, resolved)
	}
	return details, nil
}

func (service *BookingService) carLock(carID primitive.ObjectID) *sync.Mutex {
	service.locksMu.Lock()
	defer service.locksMu.Unlock()

	lock, ok := service.carLocks[carID.Hex()]
	if !ok {
		lock = &sync.Mutex{}
		service.carLocks[carID.Hex()] = lock
	}
	return lock
}

// numberOfDays is the ceiling of the day difference. A same-day range
// yields zero days and a zero price.
func numberOfDays(pickup, ret time.Time) int {
	return int(math.Ceil(ret.Sub(pickup).Hours() / 24))
}

func validateDateRange(pickup, ret time.Time) error {
	if pickup.IsZero() || ret.IsZero() {
		return &domain.ValidationError{Message: "Pickup and return dates are required"}
	}
	if pickup.After(ret) {
		return &domain.ValidationError{Message: "Pickup date must not be after return date"}
	}
	return nil
}

func storeError(err error, notFoundMessage string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &domain.NotFoundError{Message: notFoundMessage}
	}
	return &domain.StorageError{Message: err.Error()}
}
