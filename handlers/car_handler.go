package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carrental_service/domain"
	application "carrental_service/service"
	"carrental_service/storage"
)

type CarHandler struct {
	service *application.CarService
	images  *storage.ImageStorage
	logger  *logrus.Logger
	tracer  trace.Tracer
}

func NewCarHandler(service *application.CarService, images *storage.ImageStorage, logger *logrus.Logger, tracer trace.Tracer) *CarHandler {
	return &CarHandler{
		service: service,
		images:  images,
		logger:  logger,
		tracer:  tracer,
	}
}

func (handler *CarHandler) Init(router *mux.Router) {
	router.HandleFunc("/cars", handler.GetCars).Methods("GET")
	router.HandleFunc("/owner/cars", handler.GetOwnerCars).Methods("GET")
	router.HandleFunc("/owner/cars", handler.AddCar).Methods("POST")
	router.HandleFunc("/owner/cars/toggle", handler.ToggleAvailability).Methods("POST")
	router.HandleFunc("/owner/cars/delete", handler.DeleteCar).Methods("POST")
}

func (handler *CarHandler) GetCars(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "CarHandler.GetCars")
	defer span.End()

	cars, err := handler.service.GetListedCars(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	jsonResponse(cars, rw)
}

func (handler *CarHandler) GetOwnerCars(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "CarHandler.GetOwnerCars")
	defer span.End()

	ownerID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	cars, err := handler.service.GetOwnerCars(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	jsonResponse(cars, rw)
}

// AddCar takes a multipart form: a carData JSON part and an image file.
// The image goes to the external CDN first; the car is stored with the
// returned URL.
func (handler *CarHandler) AddCar(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "CarHandler.AddCar")
	defer span.End()

	ownerID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.ParseMultipartForm(10 << 20); err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid request format"})
		return
	}

	var car domain.Car
	if err := json.Unmarshal([]byte(h.FormValue("carData")), &car); err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid car data"})
		return
	}

	file, header, err := h.FormFile("image")
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Car image is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Error reading car image"})
		return
	}

	imageURL, err := handler.images.Upload(ctx, "cars", header.Filename, content)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("Error uploading car image:", err)
		rw.WriteHeader(http.StatusBadGateway)
		return
	}
	car.Image = imageURL

	created, err := handler.service.AddCar(ctx, ownerID, &car)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	rw.WriteHeader(http.StatusCreated)
	jsonResponse(created, rw)
}

type carRequest struct {
	CarID string `json:"carId"`
}

func (handler *CarHandler) ToggleAvailability(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "CarHandler.ToggleAvailability")
	defer span.End()

	userID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	carID, err := decodeCarID(h)
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid car id"})
		return
	}

	car, err := handler.service.ToggleAvailability(ctx, carID, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("Error toggling car availability:", err)
		writeError(rw, err)
		return
	}

	jsonResponse(car, rw)
}

func (handler *CarHandler) DeleteCar(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "CarHandler.DeleteCar")
	defer span.End()

	userID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	carID, err := decodeCarID(h)
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid car id"})
		return
	}

	if err := handler.service.DeleteCar(ctx, carID, userID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("Error delisting car:", err)
		writeError(rw, err)
		return
	}

	jsonResponse(map[string]string{"message": "Car removed"}, rw)
}

func decodeCarID(h *http.Request) (primitive.ObjectID, error) {
	var request carRequest
	if err := json.NewDecoder(h.Body).Decode(&request); err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(request.CarID)
}
