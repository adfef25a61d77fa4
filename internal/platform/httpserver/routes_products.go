package httpserver

import (
	"net/http"

	producthttp "lyceum/contexts/catalog/product-service/transport/http"
)

func (s *Server) registerProductRoutes() {
	s.mux.HandleFunc("GET /api/v1/products", s.handleListProducts)
	s.mux.HandleFunc("GET /api/v1/products/search", s.handleSearchProducts)
	s.mux.HandleFunc("GET /api/v1/ebooks", s.handleListEbooks)
	s.mux.HandleFunc("GET /api/v1/products/{product_id}", s.handleGetProduct)
	s.mux.HandleFunc("POST /api/v1/products", s.handleCreateProduct)
	s.mux.HandleFunc("PATCH /api/v1/products/{product_id}", s.handleUpdateProduct)
	s.mux.HandleFunc("DELETE /api/v1/products/{product_id}", s.handleDeleteProduct)
	s.mux.HandleFunc("POST /api/v1/products/{product_id}/purchase", s.handlePurchaseProduct)
	s.mux.HandleFunc("GET /api/v1/products/{product_id}/access", s.handleCheckAccess)

	s.mux.HandleFunc("GET /api/v1/transactions", s.handleListMyTransactions)
	s.mux.HandleFunc("GET /api/v1/admin/transactions", s.handleListAllTransactions)
}

// handleListProducts godoc
// @Summary List published products
// @Tags products
// @Produce json
// @Param creator_id query string false "filter by creator"
// @Param product_type query string false "filter by type" Enums(course, ebook, digital, template)
// @Param page query int false "page number, from 1"
// @Param limit query int false "page size"
// @Success 200 {object} producthttp.ListProductsResponse
// @Failure 400 {object} errorResponse
// @Router /api/v1/products [get]
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.modules.Products.Handler.ListProductsHandler(r.Context(), producthttp.ListProductsRequest{
		CreatorID:   query.Get("creator_id"),
		ProductType: query.Get("product_type"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSearchProducts godoc
// @Summary Search published products
// @Tags products
// @Produce json
// @Param q query string false "substring of name or description"
// @Param product_type query string false "filter by type" Enums(course, ebook, digital, template)
// @Param limit query int false "maximum results"
// @Success 200 {object} producthttp.SearchProductsResponse
// @Failure 400 {object} errorResponse
// @Router /api/v1/products/search [get]
func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	_, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.modules.Products.Handler.SearchProductsHandler(r.Context(), query.Get("q"), query.Get("product_type"), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListEbooks godoc
// @Summary List published e-books
// @Tags products
// @Produce json
// @Param page query int false "page number, from 1"
// @Param limit query int false "page size"
// @Success 200 {object} producthttp.ListProductsResponse
// @Failure 400 {object} errorResponse
// @Router /api/v1/ebooks [get]
func (s *Server) handleListEbooks(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Products.Handler.ListEbooksHandler(r.Context(), page, limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetProduct godoc
// @Summary Get a product
// @Description Drafts are visible only to their creator and admins.
// @Tags products
// @Produce json
// @Param product_id path string true "product"
// @Success 200 {object} producthttp.ProductDTO
// @Failure 404 {object} errorResponse
// @Router /api/v1/products/{product_id} [get]
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Products.Handler.GetProductHandler(r.Context(), principalOf(r), r.PathValue("product_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateProduct godoc
// @Summary Create a product listing
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body producthttp.CreateProductRequest true "product"
// @Success 201 {object} producthttp.ProductDTO
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /api/v1/products [post]
func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req producthttp.CreateProductRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Products.Handler.CreateProductHandler(r.Context(), principalOf(r), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleUpdateProduct godoc
// @Summary Update a product (creator or admin)
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product_id path string true "product"
// @Param body body producthttp.UpdateProductRequest true "fields to change"
// @Success 200 {object} producthttp.ProductDTO
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/products/{product_id} [patch]
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req producthttp.UpdateProductRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Products.Handler.UpdateProductHandler(r.Context(), principalOf(r), r.PathValue("product_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteProduct godoc
// @Summary Delete a product (creator or admin)
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param product_id path string true "product"
// @Success 204
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/products/{product_id} [delete]
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.modules.Products.Handler.DeleteProductHandler(r.Context(), principalOf(r), r.PathValue("product_id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePurchaseProduct godoc
// @Summary Purchase a product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param product_id path string true "product"
// @Param Idempotency-Key header string false "replays return the original transaction"
// @Success 201 {object} producthttp.TransactionDTO
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /api/v1/products/{product_id}/purchase [post]
func (s *Server) handlePurchaseProduct(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Products.Handler.PurchaseProductHandler(
		r.Context(),
		principalOf(r),
		r.Header.Get("Idempotency-Key"),
		r.PathValue("product_id"),
	)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleCheckAccess godoc
// @Summary Check access to a product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param product_id path string true "product"
// @Success 200 {object} producthttp.CheckAccessResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/products/{product_id}/access [get]
func (s *Server) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Products.Handler.CheckAccessHandler(r.Context(), principalOf(r), r.PathValue("product_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListMyTransactions godoc
// @Summary Caller's purchases
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "maximum results"
// @Success 200 {object} producthttp.ListTransactionsResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /api/v1/transactions [get]
func (s *Server) handleListMyTransactions(w http.ResponseWriter, r *http.Request) {
	_, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Products.Handler.ListMyTransactionsHandler(r.Context(), principalOf(r), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListAllTransactions godoc
// @Summary All purchases (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "maximum results"
// @Success 200 {object} producthttp.ListTransactionsResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /api/v1/admin/transactions [get]
func (s *Server) handleListAllTransactions(w http.ResponseWriter, r *http.Request) {
	_, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Products.Handler.ListAllTransactionsHandler(r.Context(), principalOf(r), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
