// Package donors searches the blood donor register.
package donors

import "time"

// DateLayout is the wire format of donation dates.
const DateLayout = "2006-01-02"

// Donor is a registered blood donor.
type Donor struct {
	ID           int64
	FirstName    string
	LastName     string
	Phone        string
	Gender       string
	BloodGroup   string
	LastDonation time.Time
}

// FullName joins first and last name.
func (d Donor) FullName() string {
	switch {
	case d.FirstName == "":
		return d.LastName
	case d.LastName == "":
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

// SearchQuery filters donors.
type SearchQuery struct {
	BloodGroup         string `validate:"required,max=8"`
	LastDonationBefore string `validate:"required"`
}

// Criteria is a parsed SearchQuery.
type Criteria struct {
	BloodGroup string
	Before     time.Time
}
