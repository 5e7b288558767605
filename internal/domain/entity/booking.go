// internal/domain/entity/booking.go
package entity

import "time"

// Booking records one customer on one flight. Cancellation is keyed on the
// (id, customerId) pair so a booking can only be removed by its owner.
type Booking struct {
	ID            string    `bson:"_id" json:"_id"`
	CustomerID    string    `bson:"customerId" json:"customerId"`
	FlightID      string    `bson:"flightId" json:"flightId"`
	DateOfBooking time.Time `bson:"dateOfBooking" json:"dateOfBooking"`
}
