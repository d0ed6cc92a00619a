package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
)

// AnalysisRepository defines persistence operations for analysis records
type AnalysisRepository interface {
	// Create stores a new analysis record
	Create(ctx context.Context, record *entities.AnalysisRecord) error

	// FindByID retrieves an analysis by its ID, nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisRecord, error)

	// FindLatestByDigest retrieves the newest successful analysis of identical audio
	FindLatestByDigest(ctx context.Context, sha256 string) (*entities.AnalysisRecord, error)

	// List retrieves analyses with filters and pagination
	List(ctx context.Context, filters AnalysisFilters) ([]*entities.AnalysisRecord, int64, error)
}

// AnalysisFilters represents filter options for listing analyses
type AnalysisFilters struct {
	RiskLevel *entities.RiskLevel
	CallID    string
	Failed    *bool
	Limit     int
	Offset    int
	SortBy    string // "created_at", "risk_score"
	SortOrder string // "asc", "desc"
}
