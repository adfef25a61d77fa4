package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"lyceum/contexts/catalog/dataset-service/application"
	"lyceum/contexts/catalog/dataset-service/ports"
	httptransport "lyceum/contexts/catalog/dataset-service/transport/http"
	"lyceum/internal/shared/gate"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListDatasetsHandler(
	ctx context.Context,
	principal *gate.Principal,
	req httptransport.ListDatasetsRequest,
) (httptransport.ListDatasetsResponse, error) {
	items, total, err := h.Service.ListDatasets(ctx, principal, ports.DatasetFilter{
		OwnerID: req.OwnerID,
		Page:    req.Page,
		Limit:   req.Limit,
	})
	if err != nil {
		return httptransport.ListDatasetsResponse{}, err
	}
	resp := httptransport.ListDatasetsResponse{
		Datasets: make([]httptransport.DatasetDTO, 0, len(items)),
		Page:     req.Page,
		Limit:    req.Limit,
		Total:    total,
	}
	if resp.Page <= 0 {
		resp.Page = 1
	}
	if resp.Limit <= 0 {
		resp.Limit = 20
	}
	for _, item := range items {
		resp.Datasets = append(resp.Datasets, toDatasetDTO(item))
	}
	return resp, nil
}

func (h Handler) GetDatasetHandler(ctx context.Context, principal *gate.Principal, datasetID string) (httptransport.DatasetDetailResponse, error) {
	detail, err := h.Service.GetDataset(ctx, principal, datasetID)
	if err != nil {
		return httptransport.DatasetDetailResponse{}, err
	}
	resp := httptransport.DatasetDetailResponse{
		DatasetDTO: toDatasetDTO(detail.Dataset),
		Files:      make([]httptransport.DatasetFileDTO, 0, len(detail.Files)),
	}
	for _, file := range detail.Files {
		resp.Files = append(resp.Files, toFileDTO(file))
	}
	return resp, nil
}

func (h Handler) CreateDatasetHandler(
	ctx context.Context,
	principal *gate.Principal,
	req httptransport.CreateDatasetRequest,
) (httptransport.DatasetDTO, error) {
	dataset, err := h.Service.CreateDataset(ctx, principal, application.CreateDatasetInput{
		Title:       req.Title,
		Description: req.Description,
		License:     req.License,
		Visibility:  req.Visibility,
		Tags:        req.Tags,
	})
	if err != nil {
		return httptransport.DatasetDTO{}, err
	}
	return toDatasetDTO(dataset), nil
}

func (h Handler) UpdateDatasetHandler(
	ctx context.Context,
	principal *gate.Principal,
	datasetID string,
	req httptransport.UpdateDatasetRequest,
) (httptransport.DatasetDTO, error) {
	dataset, err := h.Service.UpdateDataset(ctx, principal, datasetID, ports.DatasetPatch{
		Title:       req.Title,
		Description: req.Description,
		License:     req.License,
		Visibility:  req.Visibility,
		Tags:        req.Tags,
	})
	if err != nil {
		return httptransport.DatasetDTO{}, err
	}
	return toDatasetDTO(dataset), nil
}

func (h Handler) DeleteDatasetHandler(ctx context.Context, principal *gate.Principal, datasetID string) error {
	return h.Service.DeleteDataset(ctx, principal, datasetID)
}

func (h Handler) UploadFileHandler(
	ctx context.Context,
	principal *gate.Principal,
	datasetID string,
	req httptransport.UploadFileRequest,
) (httptransport.DatasetFileDTO, error) {
	file, err := h.Service.UploadFile(ctx, principal, datasetID, application.UploadFileInput{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		Checksum:    req.Checksum,
	})
	if err != nil {
		return httptransport.DatasetFileDTO{}, err
	}
	return toFileDTO(file), nil
}

func (h Handler) DeleteFileHandler(ctx context.Context, principal *gate.Principal, datasetID string, fileID string) error {
	return h.Service.DeleteFile(ctx, principal, datasetID, fileID)
}

func toDatasetDTO(item ports.Dataset) httptransport.DatasetDTO {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return httptransport.DatasetDTO{
		DatasetID:   item.DatasetID,
		OwnerID:     item.OwnerID,
		Title:       item.Title,
		Description: item.Description,
		License:     item.License,
		Visibility:  item.Visibility,
		Tags:        tags,
		FileCount:   item.FileCount,
		TotalBytes:  item.TotalBytes,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toFileDTO(item ports.DatasetFile) httptransport.DatasetFileDTO {
	return httptransport.DatasetFileDTO{
		FileID:      item.FileID,
		DatasetID:   item.DatasetID,
		FileName:    item.FileName,
		ContentType: item.ContentType,
		SizeBytes:   item.SizeBytes,
		Checksum:    item.Checksum,
		StorageKey:  item.StorageKey,
		UploadedBy:  item.UploadedBy,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
	}
}
