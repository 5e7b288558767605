// internal/interface/dataaccess/doc_helpers.go
package dataaccess

import (
	"bytes"
	"encoding/json"
	"fmt"

	"acmeair-service/internal/domain/repository"
)

// docID extracts the "_id" field from a document by round-tripping it
// through JSON. Every persisted entity carries its id under "_id".
func docID(doc interface{}) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	var keyed struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return "", fmt.Errorf("extract document id: %w", err)
	}
	if keyed.ID == "" {
		return "", fmt.Errorf("document has no _id field")
	}
	return keyed.ID, nil
}

// decodeRows decodes a slice of raw JSON documents into out, which must be
// a pointer to a slice of the target entity type.
func decodeRows(rows []json.RawMessage, out interface{}) error {
	arr, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(arr, out)
}

// matchCriteria reports whether every criteria field is present in the
// decoded document with an equal value. Values are compared through their
// JSON encoding so times and numbers match across representations.
func matchCriteria(doc map[string]interface{}, criteria repository.Criteria) bool {
	for field, want := range criteria {
		got, ok := doc[field]
		if !ok {
			return false
		}
		wantRaw, err := json.Marshal(want)
		if err != nil {
			return false
		}
		gotRaw, err := json.Marshal(got)
		if err != nil {
			return false
		}
		if !bytes.Equal(wantRaw, gotRaw) {
			return false
		}
	}
	return true
}
