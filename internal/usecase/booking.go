// internal/usecase/booking.go
package usecase

import (
	"context"
	"time"

	"acmeair-service/internal/domain/entity"
	"acmeair-service/internal/domain/repository"
	"acmeair-service/pkg/logger"
	"acmeair-service/pkg/metrics"

	"github.com/google/uuid"
)

// BookingInfo is the response for a booking request
type BookingInfo struct {
	OneWay          bool   `json:"oneWay"`
	DepartBookingID string `json:"departBookingId"`
	ReturnBookingID string `json:"returnBookingId,omitempty"`
}

// BookingService creates, cancels and lists bookings
type BookingService struct {
	da      repository.DataAccess
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewBookingService creates a new booking service
func NewBookingService(da repository.DataAccess, log logger.Logger, m *metrics.Metrics) *BookingService {
	return &BookingService{
		da:      da,
		logger:  log,
		metrics: m,
	}
}

// BookFlight books one flight for one customer and returns the booking id
func (s *BookingService) BookFlight(ctx context.Context, flightID, customerID string) (string, error) {
	booking := entity.Booking{
		ID:            uuid.NewString(),
		CustomerID:    customerID,
		FlightID:      flightID,
		DateOfBooking: time.Now(),
	}
	if err := s.da.InsertOne(ctx, s.da.Names().Booking, booking); err != nil {
		return "", err
	}
	s.metrics.BookingCreated()
	return booking.ID, nil
}

// BookFlights books the outbound flight and, for a round trip, the return
// flight. The two inserts are not atomic: when the return booking fails the
// outbound booking stays in place.
func (s *BookingService) BookFlights(ctx context.Context, customerID, toFlightID, retFlightID string, oneWay bool) (*BookingInfo, error) {
	s.logger.Debug("booking flights", "toFlight", toFlightID, "retFlight", retFlightID)

	toBookingID, err := s.BookFlight(ctx, toFlightID, customerID)
	if err != nil {
		return nil, err
	}
	if oneWay {
		return &BookingInfo{OneWay: true, DepartBookingID: toBookingID}, nil
	}

	retBookingID, err := s.BookFlight(ctx, retFlightID, customerID)
	if err != nil {
		return nil, err
	}
	return &BookingInfo{
		OneWay:          false,
		DepartBookingID: toBookingID,
		ReturnBookingID: retBookingID,
	}, nil
}

// CancelBooking removes the booking matching both the booking id and the
// owning customer. A non-matching pair is a silent no-op.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, customerID string) error {
	criteria := repository.Criteria{"_id": bookingID, "customerId": customerID}
	return s.da.Remove(ctx, s.da.Names().Booking, criteria)
}

// BookingsByUser lists all bookings held by the customer
func (s *BookingService) BookingsByUser(ctx context.Context, customerID string) ([]entity.Booking, error) {
	var bookings []entity.Booking
	criteria := repository.Criteria{"customerId": customerID}
	if err := s.da.FindBy(ctx, s.da.Names().Booking, criteria, &bookings); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []entity.Booking{}
	}
	return bookings, nil
}
