package httpserver

import (
	"net/http"

	datasethttp "lyceum/contexts/catalog/dataset-service/transport/http"
)

func (s *Server) registerDatasetRoutes() {
	s.mux.HandleFunc("GET /api/v1/datasets", s.handleListDatasets)
	s.mux.HandleFunc("GET /api/v1/datasets/{dataset_id}", s.handleGetDataset)
	s.mux.HandleFunc("POST /api/v1/datasets", s.handleCreateDataset)
	s.mux.HandleFunc("PATCH /api/v1/datasets/{dataset_id}", s.handleUpdateDataset)
	s.mux.HandleFunc("DELETE /api/v1/datasets/{dataset_id}", s.handleDeleteDataset)
	s.mux.HandleFunc("POST /api/v1/datasets/{dataset_id}/files", s.handleUploadDatasetFile)
	s.mux.HandleFunc("DELETE /api/v1/datasets/{dataset_id}/files/{file_id}", s.handleDeleteDatasetFile)
}

// handleListDatasets godoc
// @Summary List datasets
// @Description Private datasets are included only for their owner and admins.
// @Tags datasets
// @Produce json
// @Param owner_id query string false "filter by owner"
// @Param page query int false "page number, from 1"
// @Param limit query int false "page size"
// @Success 200 {object} datasethttp.ListDatasetsResponse
// @Failure 400 {object} errorResponse
// @Router /api/v1/datasets [get]
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Datasets.Handler.ListDatasetsHandler(r.Context(), principalOf(r), datasethttp.ListDatasetsRequest{
		OwnerID: r.URL.Query().Get("owner_id"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetDataset godoc
// @Summary Get a dataset with its files
// @Tags datasets
// @Produce json
// @Param dataset_id path string true "dataset"
// @Success 200 {object} datasethttp.DatasetDetailResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/datasets/{dataset_id} [get]
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Datasets.Handler.GetDatasetHandler(r.Context(), principalOf(r), r.PathValue("dataset_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateDataset godoc
// @Summary Create a dataset
// @Tags datasets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body datasethttp.CreateDatasetRequest true "dataset"
// @Success 201 {object} datasethttp.DatasetDTO
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /api/v1/datasets [post]
func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req datasethttp.CreateDatasetRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Datasets.Handler.CreateDatasetHandler(r.Context(), principalOf(r), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleUpdateDataset godoc
// @Summary Update a dataset (owner or admin)
// @Tags datasets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dataset_id path string true "dataset"
// @Param body body datasethttp.UpdateDatasetRequest true "fields to change"
// @Success 200 {object} datasethttp.DatasetDTO
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/datasets/{dataset_id} [patch]
func (s *Server) handleUpdateDataset(w http.ResponseWriter, r *http.Request) {
	var req datasethttp.UpdateDatasetRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Datasets.Handler.UpdateDatasetHandler(r.Context(), principalOf(r), r.PathValue("dataset_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteDataset godoc
// @Summary Delete a dataset and its files (owner or admin)
// @Tags datasets
// @Produce json
// @Security BearerAuth
// @Param dataset_id path string true "dataset"
// @Success 204
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/datasets/{dataset_id} [delete]
func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := s.modules.Datasets.Handler.DeleteDatasetHandler(r.Context(), principalOf(r), r.PathValue("dataset_id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadDatasetFile godoc
// @Summary Register a file under a dataset (owner or admin, not banned)
// @Tags datasets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dataset_id path string true "dataset"
// @Param body body datasethttp.UploadFileRequest true "file metadata"
// @Success 201 {object} datasethttp.DatasetFileDTO
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/datasets/{dataset_id}/files [post]
func (s *Server) handleUploadDatasetFile(w http.ResponseWriter, r *http.Request) {
	var req datasethttp.UploadFileRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Datasets.Handler.UploadFileHandler(r.Context(), principalOf(r), r.PathValue("dataset_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleDeleteDatasetFile godoc
// @Summary Delete a dataset file (owner or admin)
// @Tags datasets
// @Produce json
// @Security BearerAuth
// @Param dataset_id path string true "dataset"
// @Param file_id path string true "file"
// @Success 204
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/datasets/{dataset_id}/files/{file_id} [delete]
func (s *Server) handleDeleteDatasetFile(w http.ResponseWriter, r *http.Request) {
	err := s.modules.Datasets.Handler.DeleteFileHandler(
		r.Context(),
		principalOf(r),
		r.PathValue("dataset_id"),
		r.PathValue("file_id"),
	)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
