// internal/domain/entity/customer.go
package entity

// CustomerAddress is the postal address embedded in a customer document
type CustomerAddress struct {
	StreetAddress1 string `bson:"streetAddress1" json:"streetAddress1"`
	StreetAddress2 string `bson:"streetAddress2,omitempty" json:"streetAddress2,omitempty"`
	City           string `bson:"city" json:"city"`
	StateProvince  string `bson:"stateProvince" json:"stateProvince"`
	Country        string `bson:"country" json:"country"`
	PostalCode     string `bson:"postalCode" json:"postalCode"`
}

// Customer is keyed by the login name. Updates replace the full document.
type Customer struct {
	ID              string          `bson:"_id" json:"_id"`
	Password        string          `bson:"password" json:"password"`
	Status          string          `bson:"status" json:"status"`
	TotalMiles      int             `bson:"total_miles" json:"total_miles"`
	MilesYTD        int             `bson:"miles_ytd" json:"miles_ytd"`
	Address         CustomerAddress `bson:"address" json:"address"`
	PhoneNumber     string          `bson:"phoneNumber" json:"phoneNumber"`
	PhoneNumberType string          `bson:"phoneNumberType" json:"phoneNumberType"`
}
