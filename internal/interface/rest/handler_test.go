package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"acmeair-service/internal/cache"
	"acmeair-service/internal/domain/entity"
	"acmeair-service/internal/infrastructure/config"
	"acmeair-service/internal/domain/repository"
	"acmeair-service/internal/interface/dataaccess"
	"acmeair-service/internal/loader"
	"acmeair-service/internal/usecase"
	"acmeair-service/pkg/logger"
	"acmeair-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testContextRoot = "/rest/api"

func testBackendConfig() *config.Config {
	return &config.Config{
		DBType:                   config.BackendMongo,
		MaxCustomers:             10000,
		MaxDaysToScheduleFlights: 5,
		MaxFlightsPerDay:         10,
	}
}

// httpStore is a small in-memory DataAccess fake for exercising the HTTP
// surface end to end.
type httpStore struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage

	countUnsupported bool
	findByErr        error
}

func newHTTPStore() *httpStore {
	return &httpStore{collections: make(map[string]map[string]json.RawMessage)}
}

var httpNames = repository.DBNames{
	Customer:           "customer",
	Flight:             "flight",
	FlightSegment:      "flightSegment",
	Booking:            "booking",
	CustomerSession:    "customerSession",
	AirportCodeMapping: "airportCodeMapping",
}

func (s *httpStore) Initialize(ctx context.Context) error { return nil }

func (s *httpStore) Names() repository.DBNames { return httpNames }

func (s *httpStore) RequiresRevisionFetch() bool { return false }

func (s *httpStore) coll(name string) map[string]json.RawMessage {
	if s.collections[name] == nil {
		s.collections[name] = make(map[string]json.RawMessage)
	}
	return s.collections[name]
}

func (s *httpStore) InsertOne(ctx context.Context, collection string, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var keyed struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return err
	}
	s.coll(collection)[keyed.ID] = raw
	return nil
}

func (s *httpStore) FindOne(ctx context.Context, collection, id string, out interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.coll(collection)[id]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (s *httpStore) Update(ctx context.Context, collection, id string, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.coll(collection)[id] = raw
	return nil
}

func (s *httpStore) Remove(ctx context.Context, collection string, criteria repository.Criteria) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.coll(collection)
	for id, raw := range docs {
		if rawMatches(raw, criteria) {
			delete(docs, id)
		}
	}
	return nil
}

func (s *httpStore) FindBy(ctx context.Context, collection string, criteria repository.Criteria, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByErr != nil {
		return s.findByErr
	}
	var raws []json.RawMessage
	for _, raw := range s.coll(collection) {
		if rawMatches(raw, criteria) {
			raws = append(raws, raw)
		}
	}
	arr, err := json.Marshal(raws)
	if err != nil {
		return err
	}
	return json.Unmarshal(arr, out)
}

func (s *httpStore) Count(ctx context.Context, collection string, criteria repository.Criteria) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countUnsupported {
		return repository.CountUnsupported, nil
	}
	return int64(len(s.coll(collection))), nil
}

func rawMatches(raw json.RawMessage, criteria repository.Criteria) bool {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false
	}
	for field, want := range criteria {
		got, ok := doc[field]
		if !ok {
			return false
		}
		wantRaw, _ := json.Marshal(want)
		gotRaw, _ := json.Marshal(got)
		if !bytes.Equal(wantRaw, gotRaw) {
			return false
		}
	}
	return true
}

type testServer struct {
	engine   *gin.Engine
	store    *httpStore
	midnight time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := newHTTPStore()
	ctx := context.Background()

	require.NoError(t, store.InsertOne(ctx, httpNames.Customer, entity.Customer{
		ID:       "uid0@email.com",
		Password: "password",
		Status:   "GOLD",
	}))
	require.NoError(t, store.InsertOne(ctx, httpNames.FlightSegment, entity.FlightSegment{
		ID:         "AA0",
		OriginPort: "RDU",
		DestPort:   "JFK",
		Miles:      427,
	}))
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	require.NoError(t, store.InsertOne(ctx, httpNames.Flight, entity.Flight{
		ID:                     "flight-1",
		FlightSegmentID:        "AA0",
		ScheduledDepartureTime: midnight,
		ScheduledArrivalTime:   midnight.Add(time.Hour),
	}))

	engine := newEngine(t, store, nil)
	return &testServer{engine: engine, store: store, midnight: midnight}
}

func newEngine(t *testing.T, store repository.DataAccess, m *metrics.Metrics) *gin.Engine {
	t.Helper()
	log := logger.NewLogger("error")

	cfg := testBackendConfig()
	facade, err := dataaccess.NewFacade(cfg, log, nil)
	require.NoError(t, err)

	segmentCache := cache.NewLookup(16, 0, true)
	flightCache := cache.NewLookup(16, 0, true)

	auth := usecase.NewAuthService(store, log)
	customers := usecase.NewCustomerService(store, log)
	flights := usecase.NewFlightService(store, segmentCache, flightCache, log, nil)
	bookings := usecase.NewBookingService(store, log, nil)
	counts := usecase.NewCountService(store, log)
	dbLoader := loader.NewLoader(store, cfg, log)

	h := NewHandler(auth, customers, flights, bookings, counts, dbLoader, facade, log, m, "test")
	return NewRouter(h, testContextRoot)
}

func (ts *testServer) do(t *testing.T, method, path string, form url.Values, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, testContextRoot+path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, testContextRoot+path, nil)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: cookie})
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/login", url.Values{
		"login":    {"uid0@email.com"},
		"password": {"password"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "logged in", rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sessionid" && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("no session cookie set on login")
	return ""
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/login", url.Values{
		"login":    {"uid0@email.com"},
		"password": {"wrong"},
	}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestQueryFlightsRequiresSession(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/flights/queryflights", url.Values{
		"fromAirport": {"RDU"},
		"toAirport":   {"JFK"},
		"fromDate":    {ts.midnight.Format(time.RFC3339)},
		"oneWay":      {"true"},
	}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/flights/queryflights", nil, "bogus-session")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginAndQueryFlights(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t)

	rec := ts.do(t, http.MethodPost, "/flights/queryflights", url.Values{
		"fromAirport": {"RDU"},
		"toAirport":   {"JFK"},
		"fromDate":    {ts.midnight.Format(time.RFC3339)},
		"oneWay":      {"true"},
	}, session)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		TripFlights []struct {
			NumPages       int             `json:"numPages"`
			FlightsOptions []entity.Flight `json:"flightsOptions"`
			CurrentPage    int             `json:"currentPage"`
			HasMoreOptions bool            `json:"hasMoreOptions"`
			PageSize       int             `json:"pageSize"`
		} `json:"tripFlights"`
		TripLegs int `json:"tripLegs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TripLegs)
	require.Len(t, result.TripFlights, 1)
	leg := result.TripFlights[0]
	assert.Equal(t, 1, leg.NumPages)
	assert.Equal(t, 10, leg.PageSize)
	require.Len(t, leg.FlightsOptions, 1)
	assert.Equal(t, "flight-1", leg.FlightsOptions[0].ID)
	require.NotNil(t, leg.FlightsOptions[0].FlightSegment)
	assert.Equal(t, "RDU", leg.FlightsOptions[0].FlightSegment.OriginPort)
}

func TestBookAndListAndCancel(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t)

	rec := ts.do(t, http.MethodPost, "/bookings/bookflights", url.Values{
		"userid":       {"uid0@email.com"},
		"toFlightId":   {"flight-1"},
		"oneWayFlight": {"true"},
	}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	var info struct {
		OneWay          bool   `json:"oneWay"`
		DepartBookingID string `json:"departBookingId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.True(t, info.OneWay)
	require.NotEmpty(t, info.DepartBookingID)

	rec = ts.do(t, http.MethodGet, "/bookings/byuser/uid0@email.com", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	var bookings []entity.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookings))
	require.Len(t, bookings, 1)
	assert.Equal(t, info.DepartBookingID, bookings[0].ID)

	rec = ts.do(t, http.MethodPost, "/bookings/cancelbooking", url.Values{
		"number": {info.DepartBookingID},
		"userid": {"uid0@email.com"},
	}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/bookings/byuser/uid0@email.com", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCustomerRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t)

	rec := ts.do(t, http.MethodGet, "/customer/byid/uid0@email.com", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	var customer entity.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customer))
	assert.Equal(t, "GOLD", customer.Status)

	customer.PhoneNumber = "919-555-0100"
	body, err := json.Marshal(customer)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, testContextRoot+"/customer/byid/uid0@email.com", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: session})
	put := httptest.NewRecorder()
	ts.engine.ServeHTTP(put, req)
	require.Equal(t, http.StatusOK, put.Code)

	rec = ts.do(t, http.MethodGet, "/customer/byid/uid0@email.com", nil, session)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customer))
	assert.Equal(t, "919-555-0100", customer.PhoneNumber)
}

func TestCountEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/config/countCustomers", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Body.String())

	ts.store.countUnsupported = true
	rec = ts.do(t, http.MethodGet, "/config/countBookings", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "-1", rec.Body.String())
}

func TestConfigEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/config/activeDataService", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mongo", rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/config/runtime", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Runtime")

	rec = ts.do(t, http.MethodGet, "/config/dataServices", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mongo")
}

func TestCheckStatusAndHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/checkstatus", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	health := httptest.NewRecorder()
	ts.engine.ServeHTTP(health, req)
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "Healthy", health.Body.String())
}

func TestStoreFailureAnswers500AndCountsError(t *testing.T) {
	store := newHTTPStore()
	require.NoError(t, store.InsertOne(context.Background(), httpNames.Customer, entity.Customer{
		ID:       "uid0@email.com",
		Password: "password",
	}))
	m := metrics.NewMetrics("acmeair_rest_test")
	ts := &testServer{engine: newEngine(t, store, m), store: store}
	session := ts.login(t)

	store.findByErr = errors.New("store offline")
	rec := ts.do(t, http.MethodGet, "/bookings/byuser/uid0@email.com", nil, session)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	scrape := httptest.NewRecorder()
	ts.engine.ServeHTTP(scrape, req)
	require.Equal(t, http.StatusOK, scrape.Code)
	assert.Contains(t, scrape.Body.String(), `acmeair_rest_test_errors_total{operation="/rest/api/bookings/byuser/:user"} 1`)
}

func TestLogoutClearsSession(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t)

	rec := ts.do(t, http.MethodGet, "/login/logout", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/bookings/byuser/uid0@email.com", nil, session)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNotReadyBackendAnswers503(t *testing.T) {
	log := logger.NewLogger("error")
	cfg := testBackendConfig()
	facade, err := dataaccess.NewFacade(cfg, log, nil)
	require.NoError(t, err)

	// Services wired straight to the uninitialized facade.
	engine := newEngineOverFacade(t, facade)

	form := url.Values{"login": {"uid0@email.com"}, "password": {"password"}}
	req := httptest.NewRequest(http.MethodPost, testContextRoot+"/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func newEngineOverFacade(t *testing.T, facade *dataaccess.Facade) *gin.Engine {
	t.Helper()
	log := logger.NewLogger("error")
	cfg := testBackendConfig()

	segmentCache := cache.NewLookup(16, 0, true)
	flightCache := cache.NewLookup(16, 0, true)

	auth := usecase.NewAuthService(facade, log)
	customers := usecase.NewCustomerService(facade, log)
	flights := usecase.NewFlightService(facade, segmentCache, flightCache, log, nil)
	bookings := usecase.NewBookingService(facade, log, nil)
	counts := usecase.NewCountService(facade, log)
	dbLoader := loader.NewLoader(facade, cfg, log)

	h := NewHandler(auth, customers, flights, bookings, counts, dbLoader, facade, log, nil, "test")
	return NewRouter(h, testContextRoot)
}

func TestLoaderQueryReportsConfiguredCustomers(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/loader/query", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fmt.Sprintf("%d", testBackendConfig().MaxCustomers), rec.Body.String())
}
