package ports

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

type Dataset struct {
	DatasetID   string
	OwnerID     string
	Title       string
	Description string
	License     string
	Visibility  string
	Tags        []string
	FileCount   int
	TotalBytes  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DatasetFile is metadata only; bytes live in external blob storage under StorageKey.
type DatasetFile struct {
	FileID      string
	DatasetID   string
	FileName    string
	ContentType string
	SizeBytes   int64
	Checksum    string
	StorageKey  string
	UploadedBy  string
	CreatedAt   time.Time
}

type DatasetFilter struct {
	OwnerID    string
	Visibility string
	Page       int
	Limit      int
}

type DatasetPatch struct {
	Title       *string
	Description *string
	License     *string
	Visibility  *string
	Tags        *[]string
}

func (p DatasetPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.License == nil && p.Visibility == nil && p.Tags == nil
}

type Repository interface {
	ListDatasets(ctx context.Context, filter DatasetFilter) ([]Dataset, int, error)
	GetDataset(ctx context.Context, datasetID string) (Dataset, error)
	CreateDataset(ctx context.Context, dataset Dataset) (Dataset, error)
	UpdateDataset(ctx context.Context, datasetID string, patch DatasetPatch, now time.Time) (Dataset, error)
	// DeleteDataset removes the dataset and all of its file rows.
	DeleteDataset(ctx context.Context, datasetID string) error
	ListFiles(ctx context.Context, datasetID string) ([]DatasetFile, error)
	AddFile(ctx context.Context, file DatasetFile) (DatasetFile, error)
	DeleteFile(ctx context.Context, datasetID string, fileID string) error
	CountDatasets(ctx context.Context) (int64, error)
}
