// internal/loader/loader.go
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"acmeair-service/internal/domain/entity"
	"acmeair-service/internal/domain/repository"
	"acmeair-service/internal/infrastructure/config"
	"acmeair-service/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// databaseParallelism bounds concurrent inserts within one loading stage.
const databaseParallelism = 5

const averageSpeedMPH = 600.0

// Loader seeds the database from the mileage CSV: customers, airport code
// mappings, flight segments and flights, in that order, with a completion
// barrier between stages.
type Loader struct {
	da     repository.DataAccess
	cfg    *config.Config
	logger logger.Logger

	mu     sync.Mutex
	loaded bool
}

// NewLoader creates a new database loader
func NewLoader(da repository.DataAccess, cfg *config.Config, log logger.Logger) *Loader {
	return &Loader{
		da:     da,
		cfg:    cfg,
		logger: log,
	}
}

// NumConfiguredCustomers reports how many customers a full load creates
func (l *Loader) NumConfiguredCustomers() int {
	return l.cfg.MaxCustomers
}

// Load runs the four-stage seeding pipeline. A second call is a no-op.
func (l *Loader) Load(ctx context.Context) (string, error) {
	l.mu.Lock()
	if l.loaded {
		l.mu.Unlock()
		return "Already loaded", nil
	}
	l.loaded = true
	l.mu.Unlock()

	l.logger.Info("starting loading database")

	customers := buildCustomers(l.cfg.MaxCustomers)
	airports, segments, flights, err := l.buildFlightData()
	if err != nil {
		return "", err
	}
	l.logger.Info("generated seed data",
		"customers", len(customers),
		"airportCodeMappings", len(airports),
		"flightSegments", len(segments),
		"flights", len(flights))

	names := l.da.Names()
	if err := l.insertAll(ctx, names.Customer, customers); err != nil {
		return "", fmt.Errorf("load customers: %w", err)
	}
	l.logger.Info("all customers loaded")
	if err := l.insertAll(ctx, names.AirportCodeMapping, airports); err != nil {
		return "", fmt.Errorf("load airport code mappings: %w", err)
	}
	l.logger.Info("all airportMappings loaded")
	if err := l.insertAll(ctx, names.FlightSegment, segments); err != nil {
		return "", fmt.Errorf("load flight segments: %w", err)
	}
	l.logger.Info("all flightSegments loaded")
	if err := l.insertAll(ctx, names.Flight, flights); err != nil {
		return "", fmt.Errorf("load flights: %w", err)
	}
	l.logger.Info("all flights loaded")

	l.logger.Info("ending loading database")
	return "Database Finished Loading", nil
}

// insertAll inserts one stage's documents with bounded parallelism and
// waits for the whole stage before returning.
func (l *Loader) insertAll(ctx context.Context, collection string, docs []interface{}) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(databaseParallelism)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			return l.da.InsertOne(ctx, collection, doc)
		})
	}
	return g.Wait()
}

func buildCustomers(numCustomers int) []interface{} {
	customers := make([]interface{}, 0, numCustomers)
	for i := 0; i < numCustomers; i++ {
		customers = append(customers, entity.Customer{
			ID:         fmt.Sprintf("uid%d@email.com", i),
			Password:   "password",
			Status:     "GOLD",
			TotalMiles: 1000000,
			MilesYTD:   1000,
			Address: entity.CustomerAddress{
				StreetAddress1: "123 Main St.",
				City:           "Anytown",
				StateProvince:  "NC",
				Country:        "USA",
				PostalCode:     "27617",
			},
			PhoneNumber:     "919-123-4567",
			PhoneNumberType: "BUSINESS",
		})
	}
	return customers
}

// buildFlightData parses the mileage matrix. Row 0 holds airport names,
// row 1 the airport codes; each following row is "name, code, mileage to
// each airport of row 1". An "NA" cell means no segment on that pair.
func (l *Loader) buildFlightData() (airports, segments, flights []interface{}, err error) {
	file, err := os.Open(l.cfg.MileageCSVPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open mileage csv: %w", err)
	}
	defer file.Close()
	return l.parseFlightData(csv.NewReader(file))
}

func (l *Loader) parseFlightData(reader *csv.Reader) (airports, segments, flights []interface{}, err error) {
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse mileage csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, nil, fmt.Errorf("mileage csv needs a name row and a code row")
	}

	nowAtMidnight := dateAtMidnight(time.Now())

	for i := 0; i < len(rows[0]) && i < len(rows[1]); i++ {
		airports = append(airports, entity.AirportCodeMapping{
			ID:          rows[1][i],
			AirportName: rows[0][i],
		})
	}

	segmentID := 0
	for i := 2; i < len(rows); i++ {
		if len(rows[i]) < 2 {
			continue
		}
		fromAirportCode := rows[i][1]
		for j := 2; j < len(rows[i]) && j-2 < len(rows[1]); j++ {
			toAirportCode := rows[1][j-2]
			mileage := rows[i][j]
			if mileage == "NA" {
				continue
			}
			miles, err := strconv.Atoi(mileage)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("bad mileage %q for %s-%s: %w", mileage, fromAirportCode, toAirportCode, err)
			}
			segment := entity.FlightSegment{
				ID:         "AA" + strconv.Itoa(segmentID),
				OriginPort: fromAirportCode,
				DestPort:   toAirportCode,
				Miles:      miles,
			}
			segmentID++
			segments = append(segments, segment)

			for day := 0; day < l.cfg.MaxDaysToScheduleFlights; day++ {
				departure := nowAtMidnight.Add(time.Duration(day) * 24 * time.Hour)
				arrival := departure.Add(time.Duration(float64(miles) / averageSpeedMPH * float64(time.Hour)))
				for n := 0; n < l.cfg.MaxFlightsPerDay; n++ {
					flights = append(flights, entity.Flight{
						ID:                     uuid.NewString(),
						FlightSegmentID:        segment.ID,
						ScheduledDepartureTime: departure,
						ScheduledArrivalTime:   arrival,
						FirstClassBaseCost:     500,
						EconomyClassBaseCost:   200,
						NumFirstClassSeats:     10,
						NumEconomyClassSeats:   200,
						AirplaneTypeID:         "B747",
					})
				}
			}
		}
	}
	return airports, segments, flights, nil
}

// dateAtMidnight truncates to local midnight, the same date bucket the
// flight search matches on.
func dateAtMidnight(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
