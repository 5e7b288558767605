// internal/interface/dataaccess/postgres_store.go
package dataaccess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"acmeair-service/internal/domain/repository"
	"acmeair-service/internal/infrastructure/config"
	"acmeair-service/internal/infrastructure/persistence"
	"acmeair-service/pkg/logger"

	"gorm.io/gorm"
)

var postgresNames = repository.DBNames{
	Customer:           "n_customer",
	Flight:             "n_flight",
	FlightSegment:      "n_flightsegment",
	Booking:            "n_booking",
	CustomerSession:    "n_customersession",
	AirportCodeMapping: "n_airportcodemapping",
}

// ErrRevisionConflict is returned when a guarded update loses the race
// against a concurrent writer.
var ErrRevisionConflict = errors.New("dataaccess: revision conflict")

// documentRow is the GORM model backing every logical collection. Documents
// are stored as jsonb and versioned with a revision counter.
type documentRow struct {
	Collection string `gorm:"column:collection;primaryKey"`
	DocID      string `gorm:"column:doc_id;primaryKey"`
	Revision   int64  `gorm:"column:revision;not null;default:1"`
	Data       []byte `gorm:"column:data;type:jsonb;not null"`
}

// TableName overrides the default table name
func (documentRow) TableName() string {
	return "n_documents"
}

// PostgresStore implements the DataAccess contract on PostgreSQL through
// GORM. Updates require fetching the current revision first and writing
// with an optimistic-concurrency guard.
type PostgresStore struct {
	dsn    string
	db     *gorm.DB
	logger logger.Logger
}

// NewPostgresStore creates an unconnected PostgreSQL store
func NewPostgresStore(cfg *config.Config, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		dsn:    cfg.PostgresURI,
		logger: log,
	}
}

// Initialize connects to PostgreSQL and migrates the documents table.
// Calling it again is a no-op.
func (s *PostgresStore) Initialize(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	db, err := persistence.NewPostgresDB(s.dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&documentRow{}); err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	s.db = db
	s.logger.Info("Connected to PostgreSQL")
	return nil
}

// Names returns the postgres collection name table
func (s *PostgresStore) Names() repository.DBNames {
	return postgresNames
}

// InsertOne inserts a document at revision 1
func (s *PostgresStore) InsertOne(ctx context.Context, collection string, doc interface{}) error {
	id, err := docID(doc)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	row := documentRow{
		Collection: collection,
		DocID:      id,
		Revision:   1,
		Data:       data,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// FindOne finds a document by id. Absence is (false, nil).
func (s *PostgresStore) FindOne(ctx context.Context, collection, id string, out interface{}) (bool, error) {
	var row documentRow
	result := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if result.Error != nil {
		return false, result.Error
	}
	if err := json.Unmarshal(row.Data, out); err != nil {
		return false, err
	}
	return true, nil
}

// Update rewrites the document. The caller-supplied document has no
// revision, so the current one is fetched first and the write is guarded
// with it.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, doc interface{}) error {
	revision, err := s.fetchRevision(ctx, collection, id)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Model(&documentRow{}).
		Where("collection = ? AND doc_id = ? AND revision = ?", collection, id, revision).
		Updates(map[string]interface{}{
			"data":     data,
			"revision": revision + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRevisionConflict
	}
	return nil
}

// fetchRevision reads the current revision token for the target document
func (s *PostgresStore) fetchRevision(ctx context.Context, collection, id string) (int64, error) {
	var row documentRow
	result := s.db.WithContext(ctx).
		Select("revision").
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("no document %s in %s", id, collection)
	}
	if result.Error != nil {
		return 0, result.Error
	}
	return row.Revision, nil
}

// Remove deletes documents matching the full criteria
func (s *PostgresStore) Remove(ctx context.Context, collection string, criteria repository.Criteria) error {
	crit, err := json.Marshal(criteria)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("collection = ? AND data @> ?", collection, crit).
		Delete(&documentRow{}).Error
}

// FindBy decodes all documents matching the criteria into out
func (s *PostgresStore) FindBy(ctx context.Context, collection string, criteria repository.Criteria, out interface{}) error {
	query := s.db.WithContext(ctx).Where("collection = ?", collection)
	if len(criteria) > 0 {
		crit, err := json.Marshal(criteria)
		if err != nil {
			return err
		}
		query = query.Where("data @> ?", crit)
	}
	var rows []documentRow
	if err := query.Find(&rows).Error; err != nil {
		return err
	}
	raws := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		raws = append(raws, json.RawMessage(row.Data))
	}
	return decodeRows(raws, out)
}

// Count counts documents matching the criteria
func (s *PostgresStore) Count(ctx context.Context, collection string, criteria repository.Criteria) (int64, error) {
	query := s.db.WithContext(ctx).Model(&documentRow{}).Where("collection = ?", collection)
	if len(criteria) > 0 {
		crit, err := json.Marshal(criteria)
		if err != nil {
			return 0, err
		}
		query = query.Where("data @> ?", crit)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RequiresRevisionFetch reports that postgres updates are revision guarded
func (s *PostgresStore) RequiresRevisionFetch() bool {
	return true
}
