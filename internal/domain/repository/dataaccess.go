// internal/domain/repository/dataaccess.go
package repository

import (
	"context"
	"errors"
)

// ErrNotReady is returned when an operation reaches the data access layer
// before its connection has been initialized.
var ErrNotReady = errors.New("dataaccess: not initialized")

// CountUnsupported is the sentinel count for backends that cannot count
// documents by criteria. Callers must treat it as "unknown", not an error.
const CountUnsupported int64 = -1

// DBNames is the symbolic table of collection names for one backend. The
// literal values differ per backend; callers only ever use this table.
type DBNames struct {
	Customer           string
	Flight             string
	FlightSegment      string
	Booking            string
	CustomerSession    string
	AirportCodeMapping string
}

// Criteria is a set of field name to value equality matches.
type Criteria map[string]interface{}

// DataAccess is the uniform contract over a named-collection document store.
// Exactly one implementation is active per process, chosen at startup.
//
// FindOne and FindBy report absence as (false, nil) and an empty result,
// never as an error. Remove matches the full criteria; removing a document
// that does not match is a silent no-op.
type DataAccess interface {
	// Initialize establishes the shared connection. It is idempotent.
	Initialize(ctx context.Context) error

	// Names returns the backend's collection name table.
	Names() DBNames

	InsertOne(ctx context.Context, collection string, doc interface{}) error
	FindOne(ctx context.Context, collection, id string, out interface{}) (bool, error)
	Update(ctx context.Context, collection, id string, doc interface{}) error
	Remove(ctx context.Context, collection string, criteria Criteria) error
	FindBy(ctx context.Context, collection string, criteria Criteria, out interface{}) error

	// Count returns the number of documents matching criteria, or
	// CountUnsupported on backends without count support.
	Count(ctx context.Context, collection string, criteria Criteria) (int64, error)

	// RequiresRevisionFetch reports whether Update must read the current
	// revision token before writing.
	RequiresRevisionFetch() bool
}
