package ports

import (
	"context"

	"shipment-risk-service/internal/domain"
)

// Port: a short-TTL memo of enhanced assessments keyed by
// (package, delivery date).
//
// Get treats expired entries as absent. Implementations must be safe
// under concurrent reads and writes, but need not guarantee at-most-one
// computation for a key: duplicate concurrent computation is idempotent
// and cheap, so a racing Put simply overwrites.
type AssessmentCache interface {
	Get(ctx context.Context, key uint64) (domain.EnhancedAssessment, bool)
	Put(ctx context.Context, key uint64, assessment domain.EnhancedAssessment)
}
