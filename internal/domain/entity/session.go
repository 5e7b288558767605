// internal/domain/entity/session.go
package entity

import "time"

// CustomerSession is one issued login session. The id is a generated token;
// a customer may hold several live sessions at once.
type CustomerSession struct {
	ID               string    `bson:"_id" json:"_id"`
	CustomerID       string    `bson:"customerid" json:"customerid"`
	LastAccessedTime time.Time `bson:"lastAccessedTime" json:"lastAccessedTime"`
	TimeoutTime      time.Time `bson:"timeoutTime" json:"timeoutTime"`
}

// Expired reports whether the session has passed its timeout at the given
// instant.
func (s *CustomerSession) Expired(now time.Time) bool {
	return now.After(s.TimeoutTime)
}
