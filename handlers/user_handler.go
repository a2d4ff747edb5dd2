package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carrental_service/domain"
	application "carrental_service/service"
	"carrental_service/storage"
)

type UserHandler struct {
	authService *application.AuthService
	userService *application.UserService
	images      *storage.ImageStorage
	logger      *logrus.Logger
	tracer      trace.Tracer
}

func NewUserHandler(authService *application.AuthService, userService *application.UserService, images *storage.ImageStorage, logger *logrus.Logger, tracer trace.Tracer) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
		images:      images,
		logger:      logger,
		tracer:      tracer,
	}
}

func (handler *UserHandler) Init(router *mux.Router) {
	router.HandleFunc("/users/register", handler.Register).Methods("POST")
	router.HandleFunc("/users/login", handler.Login).Methods("POST")
	router.HandleFunc("/users/verifyAccount", handler.VerifyAccount).Methods("POST")
	router.HandleFunc("/users/data", handler.GetUserData).Methods("GET")
	router.HandleFunc("/users/becomeOwner", handler.BecomeOwner).Methods("POST")
	router.HandleFunc("/users/updateImage", handler.UpdateImage).Methods("POST")
}

func (handler *UserHandler) Register(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "UserHandler.Register")
	defer span.End()

	var user domain.User
	if err := json.NewDecoder(h.Body).Decode(&user); err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid request format"})
		return
	}

	created, err := handler.authService.Register(ctx, &user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("Error registering user:", err)
		writeError(rw, err)
		return
	}

	rw.WriteHeader(http.StatusCreated)
	jsonResponse(created, rw)
}

func (handler *UserHandler) Login(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "UserHandler.Login")
	defer span.End()

	var credentials domain.Credentials
	if err := json.NewDecoder(h.Body).Decode(&credentials); err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid request format"})
		return
	}

	token, err := handler.authService.Login(ctx, &credentials)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	jsonResponse(map[string]string{"token": token}, rw)
}

func (handler *UserHandler) VerifyAccount(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "UserHandler.VerifyAccount")
	defer span.End()

	var verification domain.AccountVerification
	if err := json.NewDecoder(h.Body).Decode(&verification); err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid request format"})
		return
	}

	if err := handler.authService.AccountConfirmation(ctx, &verification); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	jsonResponse(map[string]string{"message": "Account verified"}, rw)
}

func (handler *UserHandler) GetUserData(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "UserHandler.GetUserData")
	defer span.End()

	userID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	user, err := handler.userService.Get(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	jsonResponse(user, rw)
}

func (handler *UserHandler) BecomeOwner(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "UserHandler.BecomeOwner")
	defer span.End()

	userID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := handler.userService.BecomeOwner(ctx, userID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	jsonResponse(map[string]string{"message": "Now you can list cars"}, rw)
}

func (handler *UserHandler) UpdateImage(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "UserHandler.UpdateImage")
	defer span.End()

	userID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.ParseMultipartForm(5 << 20); err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid request format"})
		return
	}

	file, header, err := h.FormFile("image")
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Profile image is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Error reading profile image"})
		return
	}

	imageURL, err := handler.images.Upload(ctx, "users", header.Filename, content)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("Error uploading profile image:", err)
		rw.WriteHeader(http.StatusBadGateway)
		return
	}

	if err := handler.userService.UpdateImage(ctx, userID, imageURL); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	jsonResponse(map[string]string{"message": "Image updated", "image": imageURL}, rw)
}
