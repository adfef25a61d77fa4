package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	domainerrors "lyceum/contexts/catalog/dataset-service/domain/errors"
	"lyceum/contexts/catalog/dataset-service/ports"
	"lyceum/internal/shared/gate"
	"lyceum/internal/shared/validation"
)

const (
	resourceDataset = "Dataset"
	maxFileBytes    = 5 << 30
	maxTags         = 20
)

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Guard  gate.Guard
	Logger *slog.Logger
}

type CreateDatasetInput struct {
	Title       string
	Description string
	License     string
	Visibility  string
	Tags        []string
}

type UploadFileInput struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Checksum    string
}

type DatasetDetail struct {
	Dataset ports.Dataset
	Files   []ports.DatasetFile
}

// ListDatasets shows public datasets, plus private ones when an owner lists their own.
func (s Service) ListDatasets(ctx context.Context, principal *gate.Principal, filter ports.DatasetFilter) ([]ports.Dataset, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	filter.Visibility = ports.VisibilityPublic
	if filter.OwnerID != "" && gate.Authorize(principal, gate.OwnedBy(filter.OwnerID, true)).Allowed() {
		filter.Visibility = ""
	}
	return s.Repo.ListDatasets(ctx, filter)
}

// GetDataset hides private datasets from everyone but the owner and administrators.
func (s Service) GetDataset(ctx context.Context, principal *gate.Principal, datasetID string) (DatasetDetail, error) {
	if strings.TrimSpace(datasetID) == "" {
		return DatasetDetail{}, invalid("dataset_id", "is required")
	}
	dataset, err := s.Repo.GetDataset(ctx, datasetID)
	if err != nil {
		return DatasetDetail{}, err
	}
	if dataset.Visibility == ports.VisibilityPrivate &&
		!gate.Authorize(principal, gate.OwnedBy(dataset.OwnerID, true)).Allowed() {
		return DatasetDetail{}, domainerrors.ErrDatasetNotFound
	}
	files, err := s.Repo.ListFiles(ctx, datasetID)
	if err != nil {
		return DatasetDetail{}, err
	}
	return DatasetDetail{Dataset: dataset, Files: files}, nil
}

func (s Service) CreateDataset(ctx context.Context, principal *gate.Principal, input CreateDatasetInput) (ports.Dataset, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Visibility == "" {
		input.Visibility = ports.VisibilityPublic
	}
	switch {
	case input.Title == "":
		return ports.Dataset{}, invalid("title", "is required")
	case !validVisibility(input.Visibility):
		return ports.Dataset{}, invalid("visibility", "must be one of: public private")
	case len(input.Tags) > maxTags:
		return ports.Dataset{}, invalid("tags", "must have at most 20 entries")
	}

	if err := s.Guard.Check(ctx, "dataset.create", resourceDataset, principal, gate.Authenticated().NotBanned()); err != nil {
		return ports.Dataset{}, err
	}

	datasetID, err := s.newID(ctx)
	if err != nil {
		return ports.Dataset{}, err
	}
	now := s.now()
	dataset, err := s.Repo.CreateDataset(ctx, ports.Dataset{
		DatasetID:   datasetID,
		OwnerID:     principal.ID,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		License:     strings.TrimSpace(input.License),
		Visibility:  input.Visibility,
		Tags:        normalizeTags(input.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return ports.Dataset{}, err
	}

	ResolveLogger(s.Logger).Info("dataset created",
		"event", "dataset_created",
		"module", "catalog/dataset-service",
		"layer", "application",
		"dataset_id", dataset.DatasetID,
		"owner_id", dataset.OwnerID,
	)
	return dataset, nil
}

func (s Service) UpdateDataset(
	ctx context.Context,
	principal *gate.Principal,
	datasetID string,
	patch ports.DatasetPatch,
) (ports.Dataset, error) {
	if strings.TrimSpace(datasetID) == "" {
		return ports.Dataset{}, invalid("dataset_id", "is required")
	}
	if patch.Empty() {
		return ports.Dataset{}, invalid("body", "at least one field must be provided")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return ports.Dataset{}, invalid("title", "must not be empty")
	}
	if patch.Visibility != nil && !validVisibility(*patch.Visibility) {
		return ports.Dataset{}, invalid("visibility", "must be one of: public private")
	}
	if patch.Tags != nil {
		if len(*patch.Tags) > maxTags {
			return ports.Dataset{}, invalid("tags", "must have at most 20 entries")
		}
		tags := normalizeTags(*patch.Tags)
		patch.Tags = &tags
	}

	if err := s.Guard.CheckOwner(ctx, "dataset.update", resourceDataset, principal, s.ownerOf(datasetID)); err != nil {
		return ports.Dataset{}, err
	}
	return s.Repo.UpdateDataset(ctx, datasetID, patch, s.now())
}

func (s Service) DeleteDataset(ctx context.Context, principal *gate.Principal, datasetID string) error {
	if strings.TrimSpace(datasetID) == "" {
		return invalid("dataset_id", "is required")
	}
	if err := s.Guard.CheckOwner(ctx, "dataset.delete", resourceDataset, principal, s.ownerOf(datasetID)); err != nil {
		return err
	}
	if err := s.Repo.DeleteDataset(ctx, datasetID); err != nil {
		return err
	}

	ResolveLogger(s.Logger).Info("dataset deleted",
		"event", "dataset_deleted",
		"module", "catalog/dataset-service",
		"layer", "application",
		"dataset_id", datasetID,
		"actor_id", principal.ID,
	)
	return nil
}

// UploadFile registers file metadata under the dataset. Banned owners are rejected.
func (s Service) UploadFile(
	ctx context.Context,
	principal *gate.Principal,
	datasetID string,
	input UploadFileInput,
) (ports.DatasetFile, error) {
	fileName := strings.TrimSpace(input.FileName)
	switch {
	case strings.TrimSpace(datasetID) == "":
		return ports.DatasetFile{}, invalid("dataset_id", "is required")
	case fileName == "":
		return ports.DatasetFile{}, invalid("file_name", "is required")
	case path.Base(fileName) != fileName || fileName == "." || fileName == "..":
		return ports.DatasetFile{}, invalid("file_name", "must not contain path separators")
	case input.SizeBytes <= 0:
		return ports.DatasetFile{}, invalid("size_bytes", "must be positive")
	case input.SizeBytes > maxFileBytes:
		return ports.DatasetFile{}, invalid("size_bytes", "must be at most 5 GiB")
	}

	if err := s.Guard.CheckOwner(ctx, "dataset.upload_file", resourceDataset, principal, s.ownerOf(datasetID), gate.Requirement.NotBanned); err != nil {
		return ports.DatasetFile{}, err
	}

	fileID, err := s.newID(ctx)
	if err != nil {
		return ports.DatasetFile{}, err
	}
	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	file, err := s.Repo.AddFile(ctx, ports.DatasetFile{
		FileID:      fileID,
		DatasetID:   datasetID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   input.SizeBytes,
		Checksum:    strings.TrimSpace(input.Checksum),
		StorageKey:  StorageKey(datasetID, fileID),
		UploadedBy:  principal.ID,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return ports.DatasetFile{}, err
	}

	ResolveLogger(s.Logger).Info("dataset file uploaded",
		"event", "dataset_file_uploaded",
		"module", "catalog/dataset-service",
		"layer", "application",
		"dataset_id", datasetID,
		"file_id", file.FileID,
		"size_bytes", file.SizeBytes,
	)
	return file, nil
}

func (s Service) DeleteFile(ctx context.Context, principal *gate.Principal, datasetID string, fileID string) error {
	if strings.TrimSpace(datasetID) == "" {
		return invalid("dataset_id", "is required")
	}
	if strings.TrimSpace(fileID) == "" {
		return invalid("file_id", "is required")
	}
	if err := s.Guard.CheckOwner(ctx, "dataset.delete_file", resourceDataset, principal, s.ownerOf(datasetID)); err != nil {
		return err
	}
	return s.Repo.DeleteFile(ctx, datasetID, fileID)
}

// CountDatasets feeds the admin analytics read model; callers gate it.
func (s Service) CountDatasets(ctx context.Context) (int64, error) {
	return s.Repo.CountDatasets(ctx)
}

// StorageKey is the blob-store object key for a dataset file.
func StorageKey(datasetID string, fileID string) string {
	return "datasets/" + datasetID + "/" + fileID
}

func (s Service) ownerOf(datasetID string) gate.OwnerLookup {
	return func(ctx context.Context) (string, bool, error) {
		dataset, err := s.Repo.GetDataset(ctx, datasetID)
		if errors.Is(err, domainerrors.ErrDatasetNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return dataset.OwnerID, true, nil
	}
}

func validVisibility(value string) bool {
	return value == ports.VisibilityPublic || value == ports.VisibilityPrivate
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		value := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(tag, ",", " ")))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func invalid(field string, detail string) error {
	return fmt.Errorf("%w: %w", domainerrors.ErrInvalidRequest, validation.Field(field, detail))
}

func (s Service) newID(ctx context.Context) (string, error) {
	if s.IDGen == nil {
		return "", fmt.Errorf("dataset service: id generator not configured")
	}
	return s.IDGen.NewID(ctx)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
