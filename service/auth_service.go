package application

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cristalhq/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/gomail.v2"

	"carrental_service/domain"
)

var (
	smtpServer     = "smtp.office365.com"
	smtpServerPort = 587
	smtpEmail      = os.Getenv("SMTP_AUTH_MAIL")
	smtpPassword   = os.Getenv("SMTP_AUTH_PASSWORD")
)

type AuthService struct {
	users  domain.UserStore
	cache  domain.TokenCache
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewAuthService(users domain.UserStore, cache domain.TokenCache, logger *logrus.Logger, tracer trace.Tracer) *AuthService {
	return &AuthService{
		users:  users,
		cache:  cache,
		logger: logger,
		tracer: tracer,
	}
}

// Register hashes the credential, persists the user with the default
// role and mails a verification token. The mail is best-effort; a
// failed delivery never rolls the account back.
func (service *AuthService) Register(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if err := user.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if existing, err := service.users.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		span.SetStatus(codes.Error, "Email already exists")
		return nil, &domain.ConflictError{Message: "Email already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	user.Password = string(hash)
	user.Role = domain.RoleUser
	user.CreatedAt = time.Now()

	created, err := service.users.Register(ctx, user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StorageError{Message: err.Error()}
	}

	validationToken := uuid.New()
	if err := service.cache.PostCacheData(ctx, created.ID.Hex(), validationToken.String()); err != nil {
		service.logger.Println("Failed to cache validation token:", err)
	}

	go func() {
		if err := sendValidationMail(validationToken, created.Email); err != nil {
			service.logger.Println("Failed to send verification mail:", err)
		}
	}()

	created.Password = ""
	return created, nil
}

// Login checks the credential and issues a signed token carrying the
// user's id, email and role.
func (service *AuthService) Login(ctx context.Context, credentials *domain.Credentials) (string, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := service.users.GetByEmail(ctx, credentials.Email)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid credentials")
		return "", &domain.UnauthorizedError{Message: "Invalid credentials"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(credentials.Password)); err != nil {
		span.SetStatus(codes.Error, "Invalid credentials")
		return "", &domain.UnauthorizedError{Message: "Invalid credentials"}
	}

	token, err := GenerateJWT(user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return token, nil
}

// AccountConfirmation compares the mailed token with the cached one and
// burns it on success.
func (service *AuthService) AccountConfirmation(ctx context.Context, validation *domain.AccountVerification) error {
	ctx, span := service.tracer.Start(ctx, "AuthService.AccountConfirmation")
	defer span.End()

	token, err := service.cache.GetCachedValue(ctx, validation.UserToken)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &domain.ValidationError{Message: "Verification token has expired"}
	}

	if validation.MailToken != token {
		span.SetStatus(codes.Error, "Invalid verification token")
		return &domain.ValidationError{Message: "Invalid verification token"}
	}

	if err := service.cache.DelCachedValue(ctx, validation.UserToken); err != nil {
		service.logger.Println("Error deleting cached token:", err)
	}
	return nil
}

func GenerateJWT(user *domain.User) (string, error) {
	key := []byte(os.Getenv("SECRET_KEY"))
	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	if err != nil {
		return "", err
	}

	builder := jwt.NewBuilder(signer)

	claims := &domain.Claims{
		UserID:    user.ID.Hex(),
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(time.Minute * 60),
	}

	token, err := builder.Build(claims)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}

func sendValidationMail(validationToken uuid.UUID, email string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", smtpEmail)
	message.SetHeader("To", email)
	message.SetHeader("Subject", "Verify your car rental account")

	bodyString := fmt.Sprintf("Your validation token is:\n%s", validationToken)
	message.SetBody("text", bodyString)

	client := gomail.NewDialer(smtpServer, smtpServerPort, smtpEmail, smtpPassword)
	return client.DialAndSend(message)
}
