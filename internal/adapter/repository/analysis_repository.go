package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/internal/domain/repositories"
)

var sortableColumns = map[string]bool{
	"created_at":      true,
	"risk_score":      true,
	"processing_time": true,
}

// analysisRepository implements the AnalysisRepository interface
type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) repositories.AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create stores a new analysis record
func (r *analysisRepository) Create(ctx context.Context, record *entities.AnalysisRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID retrieves an analysis by its ID
func (r *analysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisRecord, error) {
	var record entities.AnalysisRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindLatestByDigest retrieves the newest successful analysis of identical audio
func (r *analysisRepository) FindLatestByDigest(ctx context.Context, sha256 string) (*entities.AnalysisRecord, error) {
	var record entities.AnalysisRecord
	err := r.db.WithContext(ctx).
		Where("audio_sha256 = ? AND failed = ?", sha256, false).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// List retrieves analyses with filters and pagination
func (r *analysisRepository) List(ctx context.Context, filters repositories.AnalysisFilters) ([]*entities.AnalysisRecord, int64, error) {
	var records []*entities.AnalysisRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.AnalysisRecord{})

	if filters.RiskLevel != nil {
		query = query.Where("risk_level = ?", *filters.RiskLevel)
	}
	if filters.CallID != "" {
		query = query.Where("call_id = ?", filters.CallID)
	}
	if filters.Failed != nil {
		query = query.Where("failed = ?", *filters.Failed)
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply sorting
	sortBy := "created_at"
	if sortableColumns[filters.SortBy] {
		sortBy = filters.SortBy
	}
	sortOrder := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	// Apply pagination
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	err := query.Find(&records).Error
	return records, total, err
}
