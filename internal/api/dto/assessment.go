package dto

// FactorResponse is one weighted factor of an enhanced assessment.
type FactorResponse struct {
	Score         int    `json:"score"`
	WeightPercent int    `json:"weight_percent"`
	Status        string `json:"status"`
	Level         string `json:"level"`
}

type EnhancedAssessmentResponse struct {
	PackageID            string                    `json:"package_id"`
	Score                int                       `json:"score"`
	RiskLevel            string                    `json:"risk_level"`
	ConfidenceLevel      int                       `json:"confidence_level"`
	PredictedDelayDays   int                       `json:"predicted_delay_days"`
	Factors              map[string]FactorResponse `json:"factors"`
	OriginalDeliveryDate string                    `json:"original_delivery_date"`
	RevisedDeliveryDate  string                    `json:"revised_delivery_date"`
}
