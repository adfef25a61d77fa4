package http

type DatasetDTO struct {
	DatasetID   string   `json:"dataset_id"`
	OwnerID     string   `json:"owner_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	License     string   `json:"license,omitempty"`
	Visibility  string   `json:"visibility"`
	Tags        []string `json:"tags"`
	FileCount   int      `json:"file_count"`
	TotalBytes  int64    `json:"total_bytes"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type DatasetFileDTO struct {
	FileID      string `json:"file_id"`
	DatasetID   string `json:"dataset_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Checksum    string `json:"checksum,omitempty"`
	StorageKey  string `json:"storage_key"`
	UploadedBy  string `json:"uploaded_by"`
	CreatedAt   string `json:"created_at"`
}

type DatasetDetailResponse struct {
	DatasetDTO
	Files []DatasetFileDTO `json:"files"`
}

type ListDatasetsRequest struct {
	OwnerID string
	Page    int
	Limit   int
}

type ListDatasetsResponse struct {
	Datasets []DatasetDTO `json:"datasets"`
	Page     int          `json:"page"`
	Limit    int          `json:"limit"`
	Total    int          `json:"total"`
}

type CreateDatasetRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	License     string   `json:"license,omitempty" validate:"max=100"`
	Visibility  string   `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
	Tags        []string `json:"tags,omitempty" validate:"max=20,dive,max=50"`
}

type UpdateDatasetRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	License     *string   `json:"license,omitempty" validate:"omitempty,max=100"`
	Visibility  *string   `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

type UploadFileRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type,omitempty" validate:"max=255"`
	SizeBytes   int64  `json:"size_bytes" validate:"required,min=1"`
	Checksum    string `json:"checksum,omitempty" validate:"max=128"`
}
