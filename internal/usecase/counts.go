// internal/usecase/counts.go
package usecase

import (
	"context"

	"acmeair-service/internal/domain/repository"
	"acmeair-service/pkg/logger"
)

// CountService reports collection sizes. Any failure, including the
// unsupported-count backend sentinel, surfaces as -1 and never as an error.
type CountService struct {
	da     repository.DataAccess
	logger logger.Logger
}

// NewCountService creates a new count service
func NewCountService(da repository.DataAccess, log logger.Logger) *CountService {
	return &CountService{
		da:     da,
		logger: log,
	}
}

func (s *CountService) count(ctx context.Context, collection string) int64 {
	count, err := s.da.Count(ctx, collection, repository.Criteria{})
	if err != nil {
		s.logger.Warn("count failed", "collection", collection, "error", err)
		return repository.CountUnsupported
	}
	return count
}

// Bookings counts booking documents
func (s *CountService) Bookings(ctx context.Context) int64 {
	return s.count(ctx, s.da.Names().Booking)
}

// Customers counts customer documents
func (s *CountService) Customers(ctx context.Context) int64 {
	return s.count(ctx, s.da.Names().Customer)
}

// Sessions counts live and expired session documents
func (s *CountService) Sessions(ctx context.Context) int64 {
	return s.count(ctx, s.da.Names().CustomerSession)
}

// Flights counts flight documents
func (s *CountService) Flights(ctx context.Context) int64 {
	return s.count(ctx, s.da.Names().Flight)
}

// FlightSegments counts flight segment documents
func (s *CountService) FlightSegments(ctx context.Context) int64 {
	return s.count(ctx, s.da.Names().FlightSegment)
}

// Airports counts airport code mapping documents
func (s *CountService) Airports(ctx context.Context) int64 {
	return s.count(ctx, s.da.Names().AirportCodeMapping)
}
