package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"acmeair-service/internal/domain/repository"
)

// memStore is an in-memory DataAccess fake that counts store operations so
// tests can assert which lookups actually reached the store.
type memStore struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage

	findByCalls  map[string]int
	findOneCalls int
	insertCalls  int
	removeCalls  int

	countUnsupported bool
	countErr         error
	failInsertAfter  int // fail inserts once insertCalls reaches this; 0 = never
}

func newMemStore() *memStore {
	return &memStore{
		collections: make(map[string]map[string]json.RawMessage),
		findByCalls: make(map[string]int),
	}
}

var memNames = repository.DBNames{
	Customer:           "customer",
	Flight:             "flight",
	FlightSegment:      "flightSegment",
	Booking:            "booking",
	CustomerSession:    "customerSession",
	AirportCodeMapping: "airportCodeMapping",
}

func (s *memStore) Initialize(ctx context.Context) error { return nil }

func (s *memStore) Names() repository.DBNames { return memNames }

func (s *memStore) RequiresRevisionFetch() bool { return false }

func (s *memStore) coll(name string) map[string]json.RawMessage {
	if s.collections[name] == nil {
		s.collections[name] = make(map[string]json.RawMessage)
	}
	return s.collections[name]
}

func (s *memStore) InsertOne(ctx context.Context, collection string, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.failInsertAfter > 0 && s.insertCalls >= s.failInsertAfter {
		return fmt.Errorf("memstore: insert failed")
	}
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

func (s *memStore) FindOne(ctx context.Context, collection, id string, out interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findOneCalls++
	raw, ok := s.coll(collection)[id]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (s *memStore) Update(ctx context.Context, collection, id string, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.coll(collection)[id] = raw
	return nil
}

func (s *memStore) Remove(ctx context.Context, collection string, criteria repository.Criteria) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCalls++
	docs := s.coll(collection)
	for id, raw := range docs {
		if matches(raw, criteria) {
			delete(docs, id)
		}
	}
	return nil
}

func (s *memStore) FindBy(ctx context.Context, collection string, criteria repository.Criteria, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findByCalls[collection]++
	var raws []json.RawMessage
	for _, raw := range s.coll(collection) {
		if matches(raw, criteria) {
			raws = append(raws, raw)
		}
	}
	arr, err := json.Marshal(raws)
	if err != nil {
		return err
	}
	return json.Unmarshal(arr, out)
}

func (s *memStore) Count(ctx context.Context, collection string, criteria repository.Criteria) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	if s.countUnsupported {
		return repository.CountUnsupported, nil
	}
	return int64(len(s.coll(collection))), nil
}

func matches(raw json.RawMessage, criteria repository.Criteria) bool {
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
