// internal/usecase/flight_search.go
package usecase

import (
	"context"
	"strconv"
	"time"

	"acmeair-service/internal/cache"
	"acmeair-service/internal/domain/entity"
	"acmeair-service/internal/domain/repository"
	"acmeair-service/pkg/logger"
	"acmeair-service/pkg/metrics"
)

const (
	segmentCacheName = "flightSegment"
	flightCacheName  = "flight"

	searchPageSize = 10
)

// TripLeg is the single result page for one direction of a trip. Paging is
// fixed: one page, ten options, never more.
type TripLeg struct {
	NumPages       int             `json:"numPages"`
	FlightsOptions []entity.Flight `json:"flightsOptions"`
	CurrentPage    int             `json:"currentPage"`
	HasMoreOptions bool            `json:"hasMoreOptions"`
	PageSize       int             `json:"pageSize"`
}

// TripFlightOptions is the search result envelope
type TripFlightOptions struct {
	TripFlights []TripLeg `json:"tripFlights"`
	TripLegs    int       `json:"tripLegs"`
}

// FlightService serves flight search through the two-tier lookup cache
// sitting in front of the data access layer.
type FlightService struct {
	da           repository.DataAccess
	segmentCache *cache.Lookup
	flightCache  *cache.Lookup
	logger       logger.Logger
	metrics      *metrics.Metrics
}

// NewFlightService creates a new flight search service
func NewFlightService(
	da repository.DataAccess,
	segmentCache *cache.Lookup,
	flightCache *cache.Lookup,
	log logger.Logger,
	m *metrics.Metrics,
) *FlightService {
	return &FlightService{
		da:           da,
		segmentCache: segmentCache,
		flightCache:  flightCache,
		logger:       log,
		metrics:      m,
	}
}

// SearchFlights resolves flights for the outbound route and date and, for a
// round trip, the reverse route on the return date. Dates are bucketed to
// local midnight before matching.
func (s *FlightService) SearchFlights(ctx context.Context, fromAirport, toAirport string, fromDate time.Time, oneWay bool, returnDate time.Time) (*TripFlightOptions, error) {
	s.metrics.FlightSearch()

	outSegment, outFlights, err := s.flightsByRouteAndDate(ctx, fromAirport, toAirport, dateAtMidnight(fromDate))
	if err != nil {
		return nil, err
	}
	outLeg := newTripLeg(annotate(outFlights, outSegment))

	if oneWay {
		return &TripFlightOptions{TripFlights: []TripLeg{outLeg}, TripLegs: 1}, nil
	}

	retSegment, retFlights, err := s.flightsByRouteAndDate(ctx, toAirport, fromAirport, dateAtMidnight(returnDate))
	if err != nil {
		return nil, err
	}
	retLeg := newTripLeg(annotate(retFlights, retSegment))

	return &TripFlightOptions{TripFlights: []TripLeg{outLeg, retLeg}, TripLegs: 2}, nil
}

// flightsByRouteAndDate resolves the segment for the route, then the
// flights for that segment and date, each through its own cache. A missing
// segment short-circuits to no flights without a flight lookup.
func (s *FlightService) flightsByRouteAndDate(ctx context.Context, fromAirport, toAirport string, date time.Time) (*entity.FlightSegment, []entity.Flight, error) {
	segment, err := s.segmentByPorts(ctx, fromAirport, toAirport)
	if err != nil {
		return nil, nil, err
	}
	if segment == nil {
		return nil, nil, nil
	}

	key := segment.ID + "-" + strconv.FormatInt(date.UnixMilli(), 10)
	if value, ok := s.flightCache.Get(key); ok {
		s.metrics.CacheHit(flightCacheName)
		s.logger.Debug("cache hit - flight search", "key", key)
		flights, _ := value.([]entity.Flight)
		return segment, flights, nil
	}
	s.metrics.CacheMiss(flightCacheName)
	s.logger.Debug("cache miss - flight search", "key", key, "cacheSize", s.flightCache.Len())

	var flights []entity.Flight
	criteria := repository.Criteria{
		"flightSegmentId":        segment.ID,
		"scheduledDepartureTime": date,
	}
	if err := s.da.FindBy(ctx, s.da.Names().Flight, criteria, &flights); err != nil {
		return nil, nil, err
	}

	if len(flights) == 0 {
		s.flightCache.Set(key, nil)
		return segment, nil, nil
	}
	s.flightCache.Set(key, flights)
	return segment, flights, nil
}

// segmentByPorts resolves a flight segment by origin and destination port,
// cache first. The cache key is the exact concatenation of the two codes,
// matching the stored route data.
func (s *FlightService) segmentByPorts(ctx context.Context, fromAirport, toAirport string) (*entity.FlightSegment, error) {
	key := fromAirport + toAirport
	if value, ok := s.segmentCache.Get(key); ok {
		s.metrics.CacheHit(segmentCacheName)
		s.logger.Debug("cache hit - flightsegment search", "key", key)
		segment, _ := value.(*entity.FlightSegment)
		return segment, nil
	}
	s.metrics.CacheMiss(segmentCacheName)
	s.logger.Debug("cache miss - flightsegment search", "key", key, "cacheSize", s.segmentCache.Len())

	var segments []entity.FlightSegment
	criteria := repository.Criteria{"originPort": fromAirport, "destPort": toAirport}
	if err := s.da.FindBy(ctx, s.da.Names().FlightSegment, criteria, &segments); err != nil {
		return nil, err
	}

	if len(segments) == 0 {
		s.segmentCache.Set(key, nil)
		return nil, nil
	}
	segment := &segments[0]
	s.segmentCache.Set(key, segment)
	return segment, nil
}

func newTripLeg(flights []entity.Flight) TripLeg {
	if flights == nil {
		flights = []entity.Flight{}
	}
	return TripLeg{
		NumPages:       1,
		FlightsOptions: flights,
		CurrentPage:    0,
		HasMoreOptions: false,
		PageSize:       searchPageSize,
	}
}

func annotate(flights []entity.Flight, segment *entity.FlightSegment) []entity.Flight {
	for i := range flights {
		flights[i].FlightSegment = segment
	}
	return flights
}

// dateAtMidnight truncates a timestamp to local midnight, the date bucket
// flights are seeded and matched on. Inputs in other zones are converted to
// the server's local calendar date first.
func dateAtMidnight(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
