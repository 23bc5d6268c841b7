package domain

import "fmt"

// Carrier is the closed set of carriers the service scores.
// Unknown carriers are rejected at the parsing boundary; data-lookup
// fallbacks only cover carriers that exist but have no aggregate row.
type Carrier string

const (
	CarrierUPS   Carrier = "UPS"
	CarrierFedEx Carrier = "FedEx"
	CarrierUSPS  Carrier = "USPS"
	CarrierDHL   Carrier = "DHL"
)

// Carriers lists every supported carrier in a stable order.
func Carriers() []Carrier {
	return []Carrier{CarrierUPS, CarrierFedEx, CarrierUSPS, CarrierDHL}
}

// ParseCarrier validates a wire-level carrier name.
func ParseCarrier(s string) (Carrier, error) {
	switch Carrier(s) {
	case CarrierUPS, CarrierFedEx, CarrierUSPS, CarrierDHL:
		return Carrier(s), nil
	}
	return "", fmt.Errorf("parse carrier: unknown carrier %q", s)
}

func (c Carrier) String() string { return string(c) }
