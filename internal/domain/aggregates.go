package domain

// CarrierAggregate summarizes a carrier's historical performance.
// ReliabilityScore is on a 0-100 scale (higher is better);
// PeakSeasonDrop is the extra risk the carrier accrues in November
// and December.
type CarrierAggregate struct {
	Carrier           Carrier
	TotalDeliveries   int
	OnTimeDeliveries  int
	DelayedDeliveries int
	AverageDelayHours float64
	ReliabilityScore  int
	PeakSeasonDrop    int
}

// GeoAggregate is static reference data for a destination zip.
type GeoAggregate struct {
	ZipCode           string
	City              string
	BaseRiskScore     int
	TrafficComplexity int
	WeatherMultiplier float64
}

// PerformanceAggregate tracks delivery performance for one
// (carrier, destination zip) pair. It is the only aggregate mutated by
// the outcome feedback loop; AvgDelayHours must equal
// TotalDelayHours / TotalDeliveries after every update.
type PerformanceAggregate struct {
	Carrier           Carrier
	ZipCode           string
	TotalDeliveries   int
	DelayedDeliveries int
	TotalDelayHours   float64
	AvgDelayHours     float64
}

// Temporal pattern kinds recognized by the store.
const (
	PatternDayOfWeek     = "day_of_week"
	PatternMonth         = "month"
	PatternHolidayPeriod = "holiday_period"
)

// TemporalPattern is static reference data mapping a recurring calendar
// pattern (e.g. month "december") to a risk multiplier.
type TemporalPattern struct {
	PatternType    string
	PatternValue   string
	RiskMultiplier float64
	Description    string
}
