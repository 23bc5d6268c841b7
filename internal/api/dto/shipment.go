package dto

// EnrichedShipmentResponse is a shipment descriptor with its basic risk
// assessment attached.
type EnrichedShipmentResponse struct {
	PackageID            string   `json:"package_id"`
	DestinationZip       string   `json:"destination_zip"`
	DestinationCity      string   `json:"destination_city"`
	Carrier              string   `json:"carrier"`
	ExpectedDeliveryDate string   `json:"expected_delivery_date"`
	RiskScore            int      `json:"risk_score"`
	RiskLevel            string   `json:"risk_level"`
	Reasons              []string `json:"reasons"`
}

type ListShipmentsResponse struct {
	Shipments []EnrichedShipmentResponse `json:"shipments"`
}
