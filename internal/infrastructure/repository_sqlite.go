package infrastructure

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// SQLiteJobRepository implements domain.JobRepository using SQLite
type SQLiteJobRepository struct {
	db *gorm.DB
}

// InMemoryDSN returns a DSN for a private in-memory database that lives as
// long as the repository
func InMemoryDSN() string {
	return fmt.Sprintf("file:ytmp3-%s?mode=memory&cache=shared", uuid.NewString())
}

// NewSQLiteJobRepository opens dsn, or a fresh in-memory database when dsn is empty
func NewSQLiteJobRepository(dsn string) (*SQLiteJobRepository, error) {
	if dsn == "" {
		dsn = InMemoryDSN()
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	// One connection keeps the in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.AutoMigrate(&domain.Job{}, &domain.JobItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteJobRepository{db: db}, nil
}

// Create creates a new job
func (r *SQLiteJobRepository) Create(job *domain.Job) error {
	return r.db.Create(job).Error
}

// Update updates an existing job
func (r *SQLiteJobRepository) Update(job *domain.Job) error {
	return r.db.Save(job).Error
}

// FindByID finds a job by ID. A missing job yields (nil, nil).
func (r *SQLiteJobRepository) FindByID(id string) (*domain.Job, error) {
	var job domain.Job
	err := r.db.First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// FindAll lists jobs newest first
func (r *SQLiteJobRepository) FindAll(filters domain.JobFilters) ([]*domain.Job, error) {
	var jobs []*domain.Job
	query := r.db.Model(&domain.Job{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Kind != "" {
		query = query.Where("kind = ?", filters.Kind)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	err := query.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// AddItem stores one item result
func (r *SQLiteJobRepository) AddItem(item *domain.JobItem) error {
	return r.db.Create(item).Error
}

// FindItems returns the item results of a job in batch order
func (r *SQLiteJobRepository) FindItems(jobID string) ([]*domain.JobItem, error) {
	var items []*domain.JobItem
	err := r.db.Where("job_id = ?", jobID).Order("`index` ASC, id ASC").Find(&items).Error
	return items, err
}

// GetStats returns job counts per status
func (r *SQLiteJobRepository) GetStats() (*domain.JobStats, error) {
	var rows []struct {
		Status domain.JobStatus
		Count  int64
	}
	err := r.db.Model(&domain.Job{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &domain.JobStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case domain.JobQueued:
			stats.Queued = row.Count
		case domain.JobRunning:
			stats.Running = row.Count
		case domain.JobCompleted:
			stats.Completed = row.Count
		case domain.JobFailed:
			stats.Failed = row.Count
		case domain.JobCancelled:
			stats.Cancelled = row.Count
		}
	}
	return stats, nil
}

// Close closes the database connection
func (r *SQLiteJobRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
