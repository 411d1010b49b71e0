package repository

import (
	"math/rand"
	"time"

	personadomain "persona-backend/internal/persona/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SampleRepository defines the interface for the sample store
type SampleRepository interface {
	// Save inserts a sample; returns false without error when the
	// (source_type, content_hash) pair already exists.
	Save(content, sourceType, contentHash string, metadata map[string]string) (bool, error)
	// GetUnembedded returns samples with no vector yet, oldest first.
	GetUnembedded(limit int) ([]personadomain.Sample, error)
	// MarkEmbedded stamps embedded_at; idempotent.
	MarkEmbedded(id string) error
	// CountBySource returns source_type -> sample count.
	CountBySource() (map[string]int64, error)
	// Count returns the total number of samples.
	Count() (int64, error)
	// Clear removes all samples. Used only by rebuild.
	Clear() error
	// SamplePool returns up to n pseudo-random samples drawn from the
	// most recent poolSize rows.
	SamplePool(n, poolSize int) ([]personadomain.Sample, error)
	// HashSet preloads all content hashes for one source type.
	HashSet(sourceType string) (map[string]struct{}, error)
}

// sampleRepository implements SampleRepository interface
type sampleRepository struct {
	db *gorm.DB
}

// NewSampleRepository creates a new instance of sampleRepository
func NewSampleRepository(db *gorm.DB) SampleRepository {
	return &sampleRepository{db: db}
}

func (r *sampleRepository) Save(content, sourceType, contentHash string, metadata map[string]string) (bool, error) {
	sample := personadomain.Sample{
		ID:          uuid.New().String(),
		Content:     content,
		SourceType:  sourceType,
		Metadata:    metadata,
		ContentHash: contentHash,
		CreatedAt:   time.Now(),
	}

	// The unique index on (source_type, content_hash) is the dedup
	// contract; a collision is a silent no-insert.
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&sample)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *sampleRepository) GetUnembedded(limit int) ([]personadomain.Sample, error) {
	var samples []personadomain.Sample
	query := r.db.Where("embedded_at IS NULL").Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *sampleRepository) MarkEmbedded(id string) error {
	now := time.Now()
	return r.db.Model(&personadomain.Sample{}).
		Where("id = ? AND embedded_at IS NULL", id).
		Update("embedded_at", &now).Error
}

func (r *sampleRepository) CountBySource() (map[string]int64, error) {
	type row struct {
		SourceType string
		Total      int64
	}
	var rows []row
	err := r.db.Model(&personadomain.Sample{}).
		Select("source_type, count(*) as total").
		Group("source_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SourceType] = row.Total
	}
	return counts, nil
}

func (r *sampleRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&personadomain.Sample{}).Count(&count).Error
	return count, err
}

func (r *sampleRepository) Clear() error {
	return r.db.Where("1 = 1").Delete(&personadomain.Sample{}).Error
}

func (r *sampleRepository) SamplePool(n, poolSize int) ([]personadomain.Sample, error) {
	if poolSize <= 0 {
		poolSize = 200
	}

	var pool []personadomain.Sample
	err := r.db.Order("created_at DESC").Limit(poolSize).Find(&pool).Error
	if err != nil {
		return nil, err
	}

	if n >= len(pool) {
		return pool, nil
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:n], nil
}

func (r *sampleRepository) HashSet(sourceType string) (map[string]struct{}, error) {
	var hashes []string
	err := r.db.Model(&personadomain.Sample{}).
		Where("source_type = ?", sourceType).
		Pluck("content_hash", &hashes).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return set, nil
}
