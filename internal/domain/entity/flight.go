// internal/domain/entity/flight.go
package entity

import "time"

// FlightSegment is a directed origin->destination route, independent of
// date and time. Reference data, loaded once.
type FlightSegment struct {
	ID         string `bson:"_id" json:"_id"`
	OriginPort string `bson:"originPort" json:"originPort"`
	DestPort   string `bson:"destPort" json:"destPort"`
	Miles      int    `bson:"miles" json:"miles"`
}

// Flight is a scheduled instance of a segment on a specific date.
// FlightSegment is filled in on search results only and never persisted.
type Flight struct {
	ID                     string         `bson:"_id" json:"_id"`
	FlightSegmentID        string         `bson:"flightSegmentId" json:"flightSegmentId"`
	ScheduledDepartureTime time.Time      `bson:"scheduledDepartureTime" json:"scheduledDepartureTime"`
	ScheduledArrivalTime   time.Time      `bson:"scheduledArrivalTime" json:"scheduledArrivalTime"`
	FirstClassBaseCost     int            `bson:"firstClassBaseCost" json:"firstClassBaseCost"`
	EconomyClassBaseCost   int            `bson:"economyClassBaseCost" json:"economyClassBaseCost"`
	NumFirstClassSeats     int            `bson:"numFirstClassSeats" json:"numFirstClassSeats"`
	NumEconomyClassSeats   int            `bson:"numEconomyClassSeats" json:"numEconomyClassSeats"`
	AirplaneTypeID         string         `bson:"airplaneTypeId" json:"airplaneTypeId"`
	FlightSegment          *FlightSegment `bson:"-" json:"flightSegment,omitempty"`
}

// AirportCodeMapping maps an airport code to its display name
type AirportCodeMapping struct {
	ID          string `bson:"_id" json:"_id"`
	AirportName string `bson:"airportName" json:"airportName"`
}
