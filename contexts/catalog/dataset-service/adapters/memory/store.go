package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainerrors "lyceum/contexts/catalog/dataset-service/domain/errors"
	"lyceum/contexts/catalog/dataset-service/ports"
)

type Store struct {
	mu       sync.RWMutex
	datasets map[string]ports.Dataset
	files    map[string][]ports.DatasetFile
	sequence uint64
}

func NewStore() *Store {
	return &Store{
		datasets: make(map[string]ports.Dataset),
		files:    make(map[string][]ports.DatasetFile),
	}
}

// SeedDataset inserts or replaces a dataset as-is.
func (s *Store) SeedDataset(dataset ports.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[dataset.DatasetID] = cloneDataset(dataset)
}

func (s *Store) ListDatasets(_ context.Context, filter ports.DatasetFilter) ([]ports.Dataset, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.Dataset, 0, len(s.datasets))
	for _, dataset := range s.datasets {
		if filter.OwnerID != "" && dataset.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Visibility != "" && dataset.Visibility != filter.Visibility {
			continue
		}
		items = append(items, cloneDataset(dataset))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].DatasetID < items[j].DatasetID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	total := len(items)
	start := (filter.Page - 1) * filter.Limit
	if start < 0 || start >= total {
		return []ports.Dataset{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return items[start:end], total, nil
}

func (s *Store) GetDataset(_ context.Context, datasetID string) (ports.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dataset, ok := s.datasets[datasetID]
	if !ok {
		return ports.Dataset{}, domainerrors.ErrDatasetNotFound
	}
	return cloneDataset(dataset), nil
}

func (s *Store) CreateDataset(_ context.Context, dataset ports.Dataset) (ports.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[dataset.DatasetID] = cloneDataset(dataset)
	return cloneDataset(dataset), nil
}

func (s *Store) UpdateDataset(_ context.Context, datasetID string, patch ports.DatasetPatch, now time.Time) (ports.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dataset, ok := s.datasets[datasetID]
	if !ok {
		return ports.Dataset{}, domainerrors.ErrDatasetNotFound
	}
	if patch.Title != nil {
		dataset.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		dataset.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.License != nil {
		dataset.License = strings.TrimSpace(*patch.License)
	}
	if patch.Visibility != nil {
		dataset.Visibility = *patch.Visibility
	}
	if patch.Tags != nil {
		dataset.Tags = append([]string(nil), (*patch.Tags)...)
	}
	dataset.UpdatedAt = now
	s.datasets[datasetID] = dataset
	return cloneDataset(dataset), nil
}

func (s *Store) DeleteDataset(_ context.Context, datasetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[datasetID]; !ok {
		return domainerrors.ErrDatasetNotFound
	}
	delete(s.datasets, datasetID)
	delete(s.files, datasetID)
	return nil
}

func (s *Store) ListFiles(_ context.Context, datasetID string) ([]ports.DatasetFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.DatasetFile{}, s.files[datasetID]...), nil
}

func (s *Store) AddFile(_ context.Context, file ports.DatasetFile) (ports.DatasetFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dataset, ok := s.datasets[file.DatasetID]
	if !ok {
		return ports.DatasetFile{}, domainerrors.ErrDatasetNotFound
	}
	s.files[file.DatasetID] = append(s.files[file.DatasetID], file)
	dataset.FileCount++
	dataset.TotalBytes += file.SizeBytes
	dataset.UpdatedAt = file.CreatedAt
	s.datasets[file.DatasetID] = dataset
	return file, nil
}

func (s *Store) DeleteFile(_ context.Context, datasetID string, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := s.files[datasetID]
	for i, file := range files {
		if file.FileID != fileID {
			continue
		}
		s.files[datasetID] = append(files[:i:i], files[i+1:]...)
		if dataset, ok := s.datasets[datasetID]; ok {
			dataset.FileCount--
			dataset.TotalBytes -= file.SizeBytes
			s.datasets[datasetID] = dataset
		}
		return nil
	}
	return domainerrors.ErrFileNotFound
}

func (s *Store) CountDatasets(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.datasets)), nil
}

func (s *Store) NewID(context.Context) (string, error) {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("ds_%d", n), nil
}

func cloneDataset(dataset ports.Dataset) ports.Dataset {
	dataset.Tags = append([]string(nil), dataset.Tags...)
	return dataset
}

var _ ports.Repository = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
