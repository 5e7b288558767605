// internal/interface/rest/handler.go
package rest

import (
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"acmeair-service/internal/domain/entity"
	"acmeair-service/internal/domain/repository"
	"acmeair-service/internal/interface/dataaccess"
	"acmeair-service/internal/loader"
	"acmeair-service/internal/usecase"
	"acmeair-service/pkg/logger"
	"acmeair-service/pkg/metrics"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "sessionid"
	loginUserKey  = "acmeair.login.user"
)

// Handler carries the services behind the HTTP surface
type Handler struct {
	auth      *usecase.AuthService
	customers *usecase.CustomerService
	flights   *usecase.FlightService
	bookings  *usecase.BookingService
	counts    *usecase.CountService
	loader    *loader.Loader
	facade    *dataaccess.Facade
	logger    logger.Logger
	metrics   *metrics.Metrics
	version   string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	auth *usecase.AuthService,
	customers *usecase.CustomerService,
	flights *usecase.FlightService,
	bookings *usecase.BookingService,
	counts *usecase.CountService,
	dbLoader *loader.Loader,
	facade *dataaccess.Facade,
	log logger.Logger,
	m *metrics.Metrics,
	version string,
) *Handler {
	return &Handler{
		auth:      auth,
		customers: customers,
		flights:   flights,
		bookings:  bookings,
		counts:    counts,
		loader:    dbLoader,
		facade:    facade,
		logger:    log,
		metrics:   m,
		version:   version,
	}
}

// fail maps service errors onto HTTP statuses: not-ready to 503, bad
// credentials to 403, anything else to 500.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotReady):
		c.AbortWithStatus(http.StatusServiceUnavailable)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.AbortWithStatus(http.StatusForbidden)
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		h.metrics.Error(c.FullPath())
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// RequireSession guards a route behind a valid, unexpired session cookie
func (h *Handler) RequireSession(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookie)
	if err != nil || strings.TrimSpace(sessionID) == "" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	customerID, err := h.auth.ValidateSession(c.Request.Context(), strings.TrimSpace(sessionID))
	if err != nil {
		h.fail(c, err)
		return
	}
	if customerID == "" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	c.Set(loginUserKey, customerID)
	c.Next()
}

type loginRequest struct {
	Login    string `json:"login" form:"login"`
	Password string `json:"password" form:"password"`
}

// Login validates credentials and sets the session cookie
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	c.SetCookie(sessionCookie, "", 0, "/", "", false, false)

	sessionID, err := h.auth.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.SetCookie(sessionCookie, sessionID, 0, "/", "", false, false)
	c.String(http.StatusOK, "logged in")
}

// Logout invalidates the session and clears the cookie
func (h *Handler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(sessionCookie); err == nil && sessionID != "" {
		if err := h.auth.InvalidateSession(c.Request.Context(), sessionID); err != nil {
			h.logger.Warn("failed to invalidate session", "error", err)
		}
	}
	c.SetCookie(sessionCookie, "", 0, "/", "", false, false)
	c.String(http.StatusOK, "logged out")
}

type queryFlightsRequest struct {
	FromAirport string `json:"fromAirport" form:"fromAirport"`
	ToAirport   string `json:"toAirport" form:"toAirport"`
	FromDate    string `json:"fromDate" form:"fromDate"`
	OneWay      string `json:"oneWay" form:"oneWay"`
	ReturnDate  string `json:"returnDate" form:"returnDate"`
}

// QueryFlights searches flights for a one-way or round trip
func (h *Handler) QueryFlights(c *gin.Context) {
	var req queryFlightsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	oneWay := req.OneWay == "true"

	fromDate, err := parseDate(req.FromDate)
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	var returnDate time.Time
	if !oneWay {
		returnDate, err = parseDate(req.ReturnDate)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
	}

	options, err := h.flights.SearchFlights(c.Request.Context(), req.FromAirport, req.ToAirport, fromDate, oneWay, returnDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

type bookFlightsRequest struct {
	UserID       string `json:"userid" form:"userid"`
	ToFlightID   string `json:"toFlightId" form:"toFlightId"`
	RetFlightID  string `json:"retFlightId" form:"retFlightId"`
	OneWayFlight string `json:"oneWayFlight" form:"oneWayFlight"`
}

// BookFlights books the outbound and, for round trips, the return flight
func (h *Handler) BookFlights(c *gin.Context) {
	var req bookFlightsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	oneWay := req.OneWayFlight == "true"

	info, err := h.bookings.BookFlights(c.Request.Context(), req.UserID, req.ToFlightID, req.RetFlightID, oneWay)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.JSON(http.StatusOK, info)
}

type cancelBookingRequest struct {
	Number string `json:"number" form:"number"`
	UserID string `json:"userid" form:"userid"`
}

// CancelBooking removes a booking owned by the requesting user
func (h *Handler) CancelBooking(c *gin.Context) {
	var req cancelBookingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	if err := h.bookings.CancelBooking(c.Request.Context(), req.Number, req.UserID); err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// BookingsByUser lists bookings held by the given user
func (h *Handler) BookingsByUser(c *gin.Context) {
	bookings, err := h.bookings.BookingsByUser(c.Request.Context(), c.Param("user"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetCustomerByID returns the customer document for the given login
func (h *Handler) GetCustomerByID(c *gin.Context) {
	customer, err := h.customers.GetCustomer(c.Request.Context(), c.Param("user"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// PutCustomerByID replaces the customer document for the given login
func (h *Handler) PutCustomerByID(c *gin.Context) {
	var customer entity.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	if err := h.customers.UpdateCustomer(c.Request.Context(), c.Param("user"), &customer); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// RuntimeInfo reports runtime name and version details
func (h *Handler) RuntimeInfo(c *gin.Context) {
	info := []gin.H{
		{"name": "Runtime", "description": "Go"},
		{"name": "go", "description": runtime.Version()},
		{"name": "app", "description": h.version},
	}
	c.JSON(http.StatusOK, info)
}

// DataServices lists the supported backends
func (h *Handler) DataServices(c *gin.Context) {
	services := []gin.H{
		{"name": "mongo", "description": "MongoDB NoSQL DB"},
		{"name": "postgres", "description": "PostgreSQL document store"},
		{"name": "redis", "description": "Redis key-value store"},
	}
	c.JSON(http.StatusOK, services)
}

// ActiveDataService reports the backend selected at startup
func (h *Handler) ActiveDataService(c *gin.Context) {
	c.String(http.StatusOK, h.facade.Backend())
}

func countString(v int64) string {
	return strconv.FormatInt(v, 10)
}

// CountBookings reports the booking count, "-1" when unknown
func (h *Handler) CountBookings(c *gin.Context) {
	c.String(http.StatusOK, countString(h.counts.Bookings(c.Request.Context())))
}

// CountCustomers reports the customer count, "-1" when unknown
func (h *Handler) CountCustomers(c *gin.Context) {
	c.String(http.StatusOK, countString(h.counts.Customers(c.Request.Context())))
}

// CountSessions reports the session count, "-1" when unknown
func (h *Handler) CountSessions(c *gin.Context) {
	c.String(http.StatusOK, countString(h.counts.Sessions(c.Request.Context())))
}

// CountFlights reports the flight count, "-1" when unknown
func (h *Handler) CountFlights(c *gin.Context) {
	c.String(http.StatusOK, countString(h.counts.Flights(c.Request.Context())))
}

// CountFlightSegments reports the flight segment count, "-1" when unknown
func (h *Handler) CountFlightSegments(c *gin.Context) {
	c.String(http.StatusOK, countString(h.counts.FlightSegments(c.Request.Context())))
}

// CountAirports reports the airport mapping count, "-1" when unknown
func (h *Handler) CountAirports(c *gin.Context) {
	c.String(http.StatusOK, countString(h.counts.Airports(c.Request.Context())))
}

// LoadDB triggers the one-time database seeding
func (h *Handler) LoadDB(c *gin.Context) {
	h.logger.Info("Start load Database")
	msg, err := h.loader.Load(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.String(http.StatusOK, msg)
}

// LoaderQuery reports the configured number of customers
func (h *Handler) LoaderQuery(c *gin.Context) {
	c.String(http.StatusOK, strconv.Itoa(h.loader.NumConfiguredCustomers()))
}

// CheckStatus answers liveness probes
func (h *Handler) CheckStatus(c *gin.Context) {
	c.Status(http.StatusOK)
}

// parseDate accepts the wire date formats the UI sends
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
