package domain

import "time"

// DateLayout is the wire format for all calendar dates handled by the
// engine (expected delivery, scheduled, actual).
const DateLayout = "2006-01-02"

// Shipment is the immutable request descriptor a risk assessment is
// computed for. ExpectedDeliveryDate keeps its wire form; collectors
// that need a calendar date parse it and fall back locally when it is
// malformed.
type Shipment struct {
	PackageID            string
	DestinationZip       string
	DestinationCity      string
	Carrier              Carrier
	ExpectedDeliveryDate string
}

// ParseDeliveryDate returns the expected delivery date as a calendar
// date, or false when the wire value is malformed.
func (s Shipment) ParseDeliveryDate() (time.Time, bool) {
	t, err := time.Parse(DateLayout, s.ExpectedDeliveryDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
