package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"carrental_service/domain"
)

// In-memory store implementations backing the service tests. They
// deliberately enforce nothing: conflict prevention has to come from
// the service layer.

type inMemoryUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*domain.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[primitive.ObjectID]*domain.User)}
}

func (store *inMemoryUserStore) Register(ctx context.Context, user *domain.User) (*domain.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	store.users[user.ID] = &copied
	return user, nil
}

func (store *inMemoryUserStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	user, ok := store.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (store *inMemoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	for _, user := range store.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (store *inMemoryUserStore) UpdateRole(ctx context.Context, id primitive.ObjectID, role domain.UserRole) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.Role = role
	return nil
}

func (store *inMemoryUserStore) UpdateImage(ctx context.Context, id primitive.ObjectID, image string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.Image = image
	return nil
}

type inMemoryCarStore struct {
	mu   sync.RWMutex
	cars map[primitive.ObjectID]*domain.Car
}

func newInMemoryCarStore() *inMemoryCarStore {
	return &inMemoryCarStore{cars: make(map[primitive.ObjectID]*domain.Car)}
}

func (store *inMemoryCarStore) Insert(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if car.ID.IsZero() {
		car.ID = primitive.NewObjectID()
	}
	copied := *car
	store.cars[car.ID] = &copied
	return car, nil
}

func (store *inMemoryCarStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Car, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	car, ok := store.cars[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *car
	return &copied, nil
}

func (store *inMemoryCarStore) GetListed(ctx context.Context) ([]*domain.Car, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	var listed []*domain.Car
	for _, car := range store.cars {
		if car.IsAvailable && car.Owner != nil {
			copied := *car
			listed = append(listed, &copied)
		}
	}
	return listed, nil
}

func (store *inMemoryCarStore) GetAvailableByLocation(ctx context.Context, location string) ([]*domain.Car, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	var matching []*domain.Car
	for _, car := range store.cars {
		if car.Location == location && car.IsAvailable {
			copied := *car
			matching = append(matching, &copied)
		}
	}
	return matching, nil
}

func (store *inMemoryCarStore) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.Car, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	var owned []*domain.Car
	for _, car := range store.cars {
		if car.Owner != nil && *car.Owner == ownerID {
			copied := *car
			owned = append(owned, &copied)
		}
	}
	return owned, nil
}

func (store *inMemoryCarStore) Update(ctx context.Context, car *domain.Car) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.cars[car.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *car
	store.cars[car.ID] = &copied
	return nil
}

type inMemoryBookingStore struct {
	mu       sync.RWMutex
	bookings []*domain.Booking
}

func newInMemoryBookingStore() *inMemoryBookingStore {
	return &inMemoryBookingStore{}
}

func (store *inMemoryBookingStore) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	copied := *booking
	store.bookings = append(store.bookings, &copied)
	return booking, nil
}

func (store *inMemoryBookingStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	for _, booking := range store.bookings {
		if booking.ID == id {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (store *inMemoryBookingStore) GetOverlapping(ctx context.Context, carID primitive.ObjectID, pickup, ret time.Time) ([]*domain.Booking, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	var overlapping []*domain.Booking
	for _, booking := range store.bookings {
		if booking.Car != carID || booking.Status == domain.StatusCancelled {
			continue
		}
		if booking.Overlaps(pickup, ret) {
			copied := *booking
			overlapping = append(overlapping, &copied)
		}
	}
	return overlapping, nil
}

func (store *inMemoryBookingStore) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Booking, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	var bookings []*domain.Booking
	for _, booking := range store.bookings {
		if booking.User == userID {
			copied := *booking
			bookings = append(bookings, &copied)
		}
	}
	sortNewestFirst(bookings)
	return bookings, nil
}

func (store *inMemoryBookingStore) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.Booking, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	var bookings []*domain.Booking
	for _, booking := range store.bookings {
		if booking.Owner == ownerID {
			copied := *booking
			bookings = append(bookings, &copied)
		}
	}
	sortNewestFirst(bookings)
	return bookings, nil
}

func (store *inMemoryBookingStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.BookingStatus) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, booking := range store.bookings {
		if booking.ID == id {
			booking.Status = status
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func sortNewestFirst(bookings []*domain.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}

type inMemoryTokenCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newInMemoryTokenCache() *inMemoryTokenCache {
	return &inMemoryTokenCache{values: make(map[string]string)}
}

func (cache *inMemoryTokenCache) PostCacheData(ctx context.Context, key string, value string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.values[key] = value
	return nil
}

func (cache *inMemoryTokenCache) GetCachedValue(ctx context.Context, key string) (string, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	value, ok := cache.values[key]
	if !ok {
		return "", mongo.ErrNoDocuments
	}
	return value, nil
}

func (cache *inMemoryTokenCache) DelCachedValue(ctx context.Context, key string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	delete(cache.values, key)
	return nil
}
