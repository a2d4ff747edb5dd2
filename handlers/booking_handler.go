package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carrental_service/domain"
	application "carrental_service/service"
)

type BookingHandler struct {
	service *application.BookingService
	logger  *logrus.Logger
	tracer  trace.Tracer
}

func NewBookingHandler(service *application.BookingService, logger *logrus.Logger, tracer trace.Tracer) *BookingHandler {
	return &BookingHandler{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

func (handler *BookingHandler) Init(router *mux.Router) {
	router.HandleFunc("/bookings/checkAvailability", handler.CheckAvailability).Methods("POST")
	router.HandleFunc("/bookings", handler.CreateBooking).Methods("POST")
	router.HandleFunc("/bookings/user", handler.GetUserBookings).Methods("GET")
	router.HandleFunc("/bookings/owner", handler.GetOwnerBookings).Methods("GET")
	router.HandleFunc("/bookings/changeStatus", handler.ChangeStatus).Methods("POST")
	router.HandleFunc("/owner/dashboard", handler.Dashboard).Methods("GET")
}

type availabilityRequest struct {
	Location   string `json:"location"`
	PickupDate string `json:"pickupDate"`
	ReturnDate string `json:"returnDate"`
}

func (handler *BookingHandler) CheckAvailability(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "BookingHandler.CheckAvailability")
	defer span.End()

	var request availabilityRequest
	if err := json.NewDecoder(h.Body).Decode(&request); err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid request format"})
		return
	}

	pickup, err := parseDate(request.PickupDate)
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid pickup date"})
		return
	}
	ret, err := parseDate(request.ReturnDate)
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid return date"})
		return
	}

	cars, err := handler.service.FindAvailableCars(ctx, request.Location, pickup, ret)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("Error checking availability:", err)
		writeError(rw, err)
		return
	}

	jsonResponse(cars, rw)
}

type createBookingRequest struct {
	Car        string `json:"car"`
	PickupDate string `json:"pickupDate"`
	ReturnDate string `json:"returnDate"`
}

func (handler *BookingHandler) CreateBooking(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "BookingHandler.CreateBooking")
	defer span.End()

	renterID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	var request createBookingRequest
	if err := json.NewDecoder(h.Body).Decode(&request); err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid request format"})
		return
	}

	carID, err := primitive.ObjectIDFromHex(request.Car)
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid car id"})
		return
	}
	pickup, err := parseDate(request.PickupDate)
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid pickup date"})
		return
	}
	ret, err := parseDate(request.ReturnDate)
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid return date"})
		return
	}

	booking, err := handler.service.CreateBooking(ctx, carID, renterID, pickup, ret)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("Error creating booking:", err)
		writeError(rw, err)
		return
	}

	rw.WriteHeader(http.StatusCreated)
	jsonResponse(booking, rw)
}

func (handler *BookingHandler) GetUserBookings(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "BookingHandler.GetUserBookings")
	defer span.End()

	userID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	bookings, err := handler.service.GetUserBookings(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	jsonResponse(bookings, rw)
}

func (handler *BookingHandler) GetOwnerBookings(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "BookingHandler.GetOwnerBookings")
	defer span.End()

	ownerID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	bookings, err := handler.service.GetOwnerBookings(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	jsonResponse(bookings, rw)
}

type changeStatusRequest struct {
	BookingID string               `json:"bookingId"`
	Status    domain.BookingStatus `json:"status"`
}

func (handler *BookingHandler) ChangeStatus(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "BookingHandler.ChangeStatus")
	defer span.End()

	userID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	var request changeStatusRequest
	if err := json.NewDecoder(h.Body).Decode(&request); err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid request format"})
		return
	}

	bookingID, err := primitive.ObjectIDFromHex(request.BookingID)
	if err != nil {
		writeError(rw, &domain.ValidationError{Message: "Invalid booking id"})
		return
	}

	booking, err := handler.service.ChangeStatus(ctx, bookingID, userID, request.Status)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.logger.Println("Error changing booking status:", err)
		writeError(rw, err)
		return
	}

	jsonResponse(booking, rw)
}

func (handler *BookingHandler) Dashboard(rw http.ResponseWriter, h *http.Request) {
	ctx, span := handler.tracer.Start(h.Context(), "BookingHandler.Dashboard")
	defer span.End()

	ownerID, err := actingUserID(h)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	dashboard, err := handler.service.Dashboard(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(rw, err)
		return
	}

	jsonResponse(dashboard, rw)
}
