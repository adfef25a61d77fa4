package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainerrors "lyceum/contexts/catalog/dataset-service/domain/errors"
	"lyceum/contexts/catalog/dataset-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Models lists the row types owned by this adapter, for AutoMigrate.
func Models() []any {
	return []any{&datasetModel{}, &fileModel{}}
}

func (r *Repository) ListDatasets(ctx context.Context, filter ports.DatasetFilter) ([]ports.Dataset, int, error) {
	tx := r.db.WithContext(ctx).Model(&datasetModel{})
	if filter.OwnerID != "" {
		tx = tx.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Visibility != "" {
		tx = tx.Where("visibility = ?", filter.Visibility)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []datasetModel
	if err := tx.
		Order("created_at DESC").
		Order("dataset_id ASC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}
	items := make([]ports.Dataset, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, int(total), nil
}

func (r *Repository) GetDataset(ctx context.Context, datasetID string) (ports.Dataset, error) {
	var row datasetModel
	err := r.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Dataset{}, domainerrors.ErrDatasetNotFound
		}
		return ports.Dataset{}, err
	}
	return row.toPort(), nil
}

func (r *Repository) CreateDataset(ctx context.Context, dataset ports.Dataset) (ports.Dataset, error) {
	row := datasetModelFromPort(dataset)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return ports.Dataset{}, err
	}
	return row.toPort(), nil
}

func (r *Repository) UpdateDataset(ctx context.Context, datasetID string, patch ports.DatasetPatch, now time.Time) (ports.Dataset, error) {
	updates := map[string]any{"updated_at": now.UTC()}
	if patch.Title != nil {
		updates["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		updates["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.License != nil {
		updates["license"] = strings.TrimSpace(*patch.License)
	}
	if patch.Visibility != nil {
		updates["visibility"] = *patch.Visibility
	}
	if patch.Tags != nil {
		updates["tags"] = joinTags(*patch.Tags)
	}
	result := r.db.WithContext(ctx).
		Model(&datasetModel{}).
		Where("dataset_id = ?", datasetID).
		Updates(updates)
	if result.Error != nil {
		return ports.Dataset{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ports.Dataset{}, domainerrors.ErrDatasetNotFound
	}
	return r.GetDataset(ctx, datasetID)
}

func (r *Repository) DeleteDataset(ctx context.Context, datasetID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dataset_id = ?", datasetID).Delete(&fileModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("dataset_id = ?", datasetID).Delete(&datasetModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrDatasetNotFound
		}
		return nil
	})
}

func (r *Repository) ListFiles(ctx context.Context, datasetID string) ([]ports.DatasetFile, error) {
	var rows []fileModel
	if err := r.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.DatasetFile, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) AddFile(ctx context.Context, file ports.DatasetFile) (ports.DatasetFile, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := fileModelFromPort(file)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		result := tx.Model(&datasetModel{}).
			Where("dataset_id = ?", file.DatasetID).
			Updates(map[string]any{
				"file_count":  gorm.Expr("file_count + 1"),
				"total_bytes": gorm.Expr("total_bytes + ?", file.SizeBytes),
				"updated_at":  file.CreatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrDatasetNotFound
		}
		return nil
	})
	if err != nil {
		return ports.DatasetFile{}, err
	}
	return file, nil
}

func (r *Repository) DeleteFile(ctx context.Context, datasetID string, fileID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row fileModel
		if err := tx.
			Where("dataset_id = ? AND file_id = ?", datasetID, fileID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrFileNotFound
			}
			return err
		}
		if err := tx.Delete(&row).Error; err != nil {
			return err
		}
		return tx.Model(&datasetModel{}).
			Where("dataset_id = ?", datasetID).
			Updates(map[string]any{
				"file_count":  gorm.Expr("file_count - 1"),
				"total_bytes": gorm.Expr("total_bytes - ?", row.SizeBytes),
			}).
			Error
	})
}

func (r *Repository) CountDatasets(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&datasetModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type datasetModel struct {
	DatasetID   string    `gorm:"column:dataset_id;primaryKey"`
	OwnerID     string    `gorm:"column:owner_id;index"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	License     string    `gorm:"column:license"`
	Visibility  string    `gorm:"column:visibility;index"`
	Tags        string    `gorm:"column:tags"`
	FileCount   int       `gorm:"column:file_count"`
	TotalBytes  int64     `gorm:"column:total_bytes"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (datasetModel) TableName() string {
	return "datasets"
}

func datasetModelFromPort(dataset ports.Dataset) datasetModel {
	return datasetModel{
		DatasetID:   dataset.DatasetID,
		OwnerID:     dataset.OwnerID,
		Title:       dataset.Title,
		Description: dataset.Description,
		License:     dataset.License,
		Visibility:  dataset.Visibility,
		Tags:        joinTags(dataset.Tags),
		FileCount:   dataset.FileCount,
		TotalBytes:  dataset.TotalBytes,
		CreatedAt:   dataset.CreatedAt.UTC(),
		UpdatedAt:   dataset.UpdatedAt.UTC(),
	}
}

func (m datasetModel) toPort() ports.Dataset {
	return ports.Dataset{
		DatasetID:   m.DatasetID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		Description: m.Description,
		License:     m.License,
		Visibility:  m.Visibility,
		Tags:        splitTags(m.Tags),
		FileCount:   m.FileCount,
		TotalBytes:  m.TotalBytes,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type fileModel struct {
	FileID      string    `gorm:"column:file_id;primaryKey"`
	DatasetID   string    `gorm:"column:dataset_id;index"`
	FileName    string    `gorm:"column:file_name"`
	ContentType string    `gorm:"column:content_type"`
	SizeBytes   int64     `gorm:"column:size_bytes"`
	Checksum    string    `gorm:"column:checksum"`
	StorageKey  string    `gorm:"column:storage_key"`
	UploadedBy  string    `gorm:"column:uploaded_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (fileModel) TableName() string {
	return "dataset_files"
}

func fileModelFromPort(file ports.DatasetFile) fileModel {
	return fileModel{
		FileID:      file.FileID,
		DatasetID:   file.DatasetID,
		FileName:    file.FileName,
		ContentType: file.ContentType,
		SizeBytes:   file.SizeBytes,
		Checksum:    file.Checksum,
		StorageKey:  file.StorageKey,
		UploadedBy:  file.UploadedBy,
		CreatedAt:   file.CreatedAt.UTC(),
	}
}

func (m fileModel) toPort() ports.DatasetFile {
	return ports.DatasetFile{
		FileID:      m.FileID,
		DatasetID:   m.DatasetID,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		Checksum:    m.Checksum,
		StorageKey:  m.StorageKey,
		UploadedBy:  m.UploadedBy,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

// Tags are stored comma-joined; the service strips commas from tag values.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}

// SystemClock implements ports.Clock using wall-clock UTC time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator implements ports.IDGenerator using RFC 4122 UUID v4 values.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.Repository = (*Repository)(nil)
