package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "jan-server/services/engage-api/internal/domain/analytics"
	"jan-server/services/engage-api/internal/infrastructure/database/entities"
)

// PostgresRepository persists analytics via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateCall(ctx context.Context, record *domain.CallRecord) error {
	return r.db.WithContext(ctx).Create(callToEntity(record)).Error
}

// UpsertCallStatus updates the status of an existing call row. Calls without a row are ignored.
func (r *PostgresRepository) UpsertCallStatus(ctx context.Context, callID, status string, duration int) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if duration > 0 {
		updates["duration"] = duration
	}
	return r.db.WithContext(ctx).
		Model(&entities.Call{}).
		Where("call_id = ?", callID).
		Updates(updates).Error
}

func (r *PostgresRepository) CreateMessage(ctx context.Context, record *domain.MessageRecord) error {
	return r.db.WithContext(ctx).Create(messageToEntity(record)).Error
}

func (r *PostgresRepository) CreateIntent(ctx context.Context, record *domain.IntentRecord) error {
	return r.db.WithContext(ctx).Create(intentToEntity(record)).Error
}

func (r *PostgresRepository) ListCalls(ctx context.Context, filter domain.Filter) ([]domain.CallRecord, error) {
	query := r.db.WithContext(ctx).Model(&entities.Call{})
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	query = applyRange(query, "created_at", filter)

	var rows []entities.Call
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.CallRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, callFromEntity(row))
	}
	return out, nil
}

func (r *PostgresRepository) ListMessages(ctx context.Context, filter domain.Filter) ([]domain.MessageRecord, error) {
	query := r.db.WithContext(ctx).Model(&entities.Message{})
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel)
	}
	query = applyRange(query, "timestamp", filter)

	var rows []entities.Message
	if err := query.Order("timestamp DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.MessageRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, messageFromEntity(row))
	}
	return out, nil
}

func (r *PostgresRepository) CallStats(ctx context.Context) (domain.CallStats, error) {
	var stats domain.CallStats
	db := r.db.WithContext(ctx).Model(&entities.Call{})
	if err := db.Count(&stats.Total).Error; err != nil {
		return domain.CallStats{}, err
	}
	if err := r.db.WithContext(ctx).Model(&entities.Call{}).Where("status = ?", "completed").Count(&stats.Completed).Error; err != nil {
		return domain.CallStats{}, err
	}
	if err := r.db.WithContext(ctx).Model(&entities.Call{}).Select("COALESCE(AVG(duration), 0)").Scan(&stats.AvgDuration).Error; err != nil {
		return domain.CallStats{}, err
	}
	return stats, nil
}

func (r *PostgresRepository) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Message{}).Count(&count).Error
	return count, err
}

func (r *PostgresRepository) TopIntents(ctx context.Context, limit int) ([]domain.IntentCount, error) {
	var rows []domain.IntentCount
	err := r.db.WithContext(ctx).
		Model(&entities.Intent{}).
		Select("intent, COUNT(*) AS count").
		Group("intent").
		Order("count DESC, intent ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *PostgresRepository) IntentDistribution(ctx context.Context) ([]domain.IntentShare, error) {
	var rows []domain.IntentShare
	err := r.db.WithContext(ctx).
		Model(&entities.Intent{}).
		Select("sector, intent, COUNT(*) AS count").
		Group("sector, intent").
		Order("sector ASC, count DESC").
		Scan(&rows).Error
	return rows, err
}

func applyRange(query *gorm.DB, column string, filter domain.Filter) *gorm.DB {
	if filter.StartDate != nil {
		query = query.Where(column+" >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where(column+" <= ?", *filter.EndDate)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	return query
}
