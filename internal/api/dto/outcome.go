package dto

// OutcomeRequest records an observed delivery outcome. ActualDate
// defaults to today when omitted.
type OutcomeRequest struct {
	PackageID      string   `json:"package_id"`
	Carrier        string   `json:"carrier"`
	OriginZip      string   `json:"origin_zip"`
	DestinationZip string   `json:"destination_zip"`
	ScheduledDate  string   `json:"scheduled_date"`
	ActualDate     string   `json:"actual_date"`
	DelayReasons   []string `json:"delay_reasons"`
}

type OutcomeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatsResponse is the admin performance snapshot.
type StatsResponse struct {
	Carriers []CarrierStatsResponse `json:"carriers"`
	Recent   RecentOutcomeStats     `json:"recent_performance"`
}

type CarrierStatsResponse struct {
	Carrier          string  `json:"carrier"`
	TotalDeliveries  int     `json:"total_deliveries"`
	OnTimeDeliveries int     `json:"on_time_deliveries"`
	ReliabilityScore int     `json:"reliability_score"`
	AverageDelayHrs  float64 `json:"average_delay_hours"`
}

type RecentOutcomeStats struct {
	TotalOutcomes   int     `json:"total_outcomes"`
	DelayedOutcomes int     `json:"delayed_outcomes"`
	AverageDelayHrs float64 `json:"average_delay_hours"`
}
