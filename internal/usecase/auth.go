// internal/usecase/auth.go
package usecase

import (
	"context"
	"errors"
	"time"

	"acmeair-service/internal/domain/entity"
	"acmeair-service/internal/domain/repository"
	"acmeair-service/pkg/logger"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned when the login or password does not
// match a stored customer.
var ErrInvalidCredentials = errors.New("usecase: invalid credentials")

// sessionTTL is the fixed absolute lifetime of a session from issuance.
const sessionTTL = 24 * time.Hour

// AuthService validates customers and manages their sessions
type AuthService struct {
	da     repository.DataAccess
	logger logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(da repository.DataAccess, log logger.Logger) *AuthService {
	return &AuthService{
		da:     da,
		logger: log,
	}
}

// Login checks the credentials and issues a session, returning its id
func (s *AuthService) Login(ctx context.Context, login, password string) (string, error) {
	var customer entity.Customer
	found, err := s.da.FindOne(ctx, s.da.Names().Customer, login, &customer)
	if err != nil {
		return "", err
	}
	if !found || customer.Password != password {
		return "", ErrInvalidCredentials
	}
	return s.CreateSession(ctx, login)
}

// CreateSession issues a fresh session for the customer. Every login event
// creates one session document; concurrent sessions are allowed.
func (s *AuthService) CreateSession(ctx context.Context, customerID string) (string, error) {
	now := time.Now()
	session := entity.CustomerSession{
		ID:               uuid.NewString(),
		CustomerID:       customerID,
		LastAccessedTime: now,
		TimeoutTime:      now.Add(sessionTTL),
	}
	if err := s.da.InsertOne(ctx, s.da.Names().CustomerSession, session); err != nil {
		return "", err
	}
	return session.ID, nil
}

// ValidateSession returns the customer id for a live session, or "" when
// the session is absent or expired. An expired session is deleted on read.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (string, error) {
	var session entity.CustomerSession
	found, err := s.da.FindOne(ctx, s.da.Names().CustomerSession, sessionID, &session)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	if session.Expired(time.Now()) {
		s.logger.Debug("evicting expired session", "sessionId", sessionID)
		criteria := repository.Criteria{"_id": sessionID}
		if err := s.da.Remove(ctx, s.da.Names().CustomerSession, criteria); err != nil {
			return "", err
		}
		return "", nil
	}
	return session.CustomerID, nil
}

// InvalidateSession deletes the session explicitly
func (s *AuthService) InvalidateSession(ctx context.Context, sessionID string) error {
	criteria := repository.Criteria{"_id": sessionID}
	return s.da.Remove(ctx, s.da.Names().CustomerSession, criteria)
}
