package application

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carrental_service/domain"
)

type UserService struct {
	users  domain.UserStore
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewUserService(users domain.UserStore, logger *logrus.Logger, tracer trace.Tracer) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
		tracer: tracer,
	}
}

func (service *UserService) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Get")
	defer span.End()

	user, err := service.users.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError(err, "User not found")
	}
	user.Password = ""
	return user, nil
}

// BecomeOwner promotes the acting user to the owner role. Promotion is
// self-service and one-way; there is no demotion.
func (service *UserService) BecomeOwner(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "UserService.BecomeOwner")
	defer span.End()

	if err := service.users.UpdateRole(ctx, id, domain.RoleOwner); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return storeError(err, "User not found")
	}

	service.logger.Println("User promoted to owner:", id.Hex())
	return nil
}

func (service *UserService) UpdateImage(ctx context.Context, id primitive.ObjectID, imageURL string) error {
	ctx, span := service.tracer.Start(ctx, "UserService.UpdateImage")
	defer span.End()

	if err := service.users.UpdateImage(ctx, id, imageURL); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return storeError(err, "User not found")
	}
	return nil
}
