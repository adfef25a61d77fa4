package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"lyceum/contexts/catalog/product-service/application"
	"lyceum/contexts/catalog/product-service/ports"
	httptransport "lyceum/contexts/catalog/product-service/transport/http"
	"lyceum/internal/shared/gate"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListProductsHandler(ctx context.Context, req httptransport.ListProductsRequest) (httptransport.ListProductsResponse, error) {
	items, total, err := h.Service.ListProducts(ctx, ports.ProductFilter{
		CreatorID:   req.CreatorID,
		ProductType: req.ProductType,
		Page:        req.Page,
		Limit:       req.Limit,
	})
	if err != nil {
		return httptransport.ListProductsResponse{}, err
	}
	return toListResponse(items, total, req.Page, req.Limit), nil
}

func (h Handler) ListEbooksHandler(ctx context.Context, page int, limit int) (httptransport.ListProductsResponse, error) {
	items, total, err := h.Service.ListEbooks(ctx, page, limit)
	if err != nil {
		return httptransport.ListProductsResponse{}, err
	}
	return toListResponse(items, total, page, limit), nil
}

func (h Handler) SearchProductsHandler(ctx context.Context, query string, productType string, limit int) (httptransport.SearchProductsResponse, error) {
	items, err := h.Service.SearchProducts(ctx, query, productType, limit)
	if err != nil {
		return httptransport.SearchProductsResponse{}, err
	}
	resp := httptransport.SearchProductsResponse{
		Products: make([]httptransport.ProductDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Products = append(resp.Products, toProductDTO(item))
	}
	return resp, nil
}

func (h Handler) GetProductHandler(ctx context.Context, principal *gate.Principal, productID string) (httptransport.ProductDTO, error) {
	product, err := h.Service.GetProduct(ctx, principal, productID)
	if err != nil {
		return httptransport.ProductDTO{}, err
	}
	return toProductDTO(product), nil
}

func (h Handler) CreateProductHandler(
	ctx context.Context,
	principal *gate.Principal,
	req httptransport.CreateProductRequest,
) (httptransport.ProductDTO, error) {
	product, err := h.Service.CreateProduct(ctx, principal, application.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		ProductType:   req.ProductType,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
		CoverImageURL: req.CoverImageURL,
		Status:        req.Status,
		Author:        req.Author,
		PageCount:     req.PageCount,
	})
	if err != nil {
		return httptransport.ProductDTO{}, err
	}
	return toProductDTO(product), nil
}

func (h Handler) UpdateProductHandler(
	ctx context.Context,
	principal *gate.Principal,
	productID string,
	req httptransport.UpdateProductRequest,
) (httptransport.ProductDTO, error) {
	product, err := h.Service.UpdateProduct(ctx, principal, productID, ports.ProductPatch{
		Name:          req.Name,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		CoverImageURL: req.CoverImageURL,
		Status:        req.Status,
		Author:        req.Author,
		PageCount:     req.PageCount,
	})
	if err != nil {
		return httptransport.ProductDTO{}, err
	}
	return toProductDTO(product), nil
}

func (h Handler) DeleteProductHandler(ctx context.Context, principal *gate.Principal, productID string) error {
	return h.Service.DeleteProduct(ctx, principal, productID)
}

func (h Handler) PurchaseProductHandler(
	ctx context.Context,
	principal *gate.Principal,
	idempotencyKey string,
	productID string,
) (httptransport.TransactionDTO, error) {
	purchase, err := h.Service.PurchaseProduct(ctx, principal, idempotencyKey, productID)
	if err != nil {
		return httptransport.TransactionDTO{}, err
	}
	return toTransactionDTO(purchase), nil
}

func (h Handler) CheckAccessHandler(ctx context.Context, principal *gate.Principal, productID string) (httptransport.CheckAccessResponse, error) {
	hasAccess, err := h.Service.CheckAccess(ctx, principal, productID)
	if err != nil {
		return httptransport.CheckAccessResponse{}, err
	}
	return httptransport.CheckAccessResponse{ProductID: productID, HasAccess: hasAccess}, nil
}

func (h Handler) ListMyTransactionsHandler(ctx context.Context, principal *gate.Principal, limit int) (httptransport.ListTransactionsResponse, error) {
	items, err := h.Service.ListMyTransactions(ctx, principal, limit)
	if err != nil {
		return httptransport.ListTransactionsResponse{}, err
	}
	return toTransactionsResponse(items), nil
}

func (h Handler) ListAllTransactionsHandler(ctx context.Context, principal *gate.Principal, limit int) (httptransport.ListTransactionsResponse, error) {
	items, err := h.Service.ListAllTransactions(ctx, principal, limit)
	if err != nil {
		return httptransport.ListTransactionsResponse{}, err
	}
	return toTransactionsResponse(items), nil
}

func toListResponse(items []ports.Product, total int, page int, limit int) httptransport.ListProductsResponse {
	resp := httptransport.ListProductsResponse{
		Products: make([]httptransport.ProductDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Products = append(resp.Products, toProductDTO(item))
	}
	resp.Pagination.Page = page
	if resp.Pagination.Page <= 0 {
		resp.Pagination.Page = 1
	}
	resp.Pagination.Limit = limit
	if resp.Pagination.Limit <= 0 {
		resp.Pagination.Limit = 20
	}
	if resp.Pagination.Limit > 100 {
		resp.Pagination.Limit = 100
	}
	resp.Pagination.Total = total
	resp.Pagination.Pages = total / resp.Pagination.Limit
	if total%resp.Pagination.Limit != 0 {
		resp.Pagination.Pages++
	}
	if resp.Pagination.Pages == 0 {
		resp.Pagination.Pages = 1
	}
	return resp
}

func toProductDTO(item ports.Product) httptransport.ProductDTO {
	return httptransport.ProductDTO{
		ProductID:     item.ProductID,
		CreatorID:     item.CreatorID,
		Name:          item.Name,
		Description:   item.Description,
		ProductType:   item.ProductType,
		PriceCents:    item.PriceCents,
		Currency:      item.Currency,
		CoverImageURL: item.CoverImageURL,
		Status:        item.Status,
		SalesCount:    item.SalesCount,
		Author:        item.Author,
		PageCount:     item.PageCount,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toTransactionDTO(item ports.Purchase) httptransport.TransactionDTO {
	return httptransport.TransactionDTO{
		TransactionID: item.PurchaseID,
		UserID:        item.UserID,
		ProductID:     item.ProductID,
		SellerID:      item.SellerID,
		AmountCents:   item.AmountCents,
		Currency:      item.Currency,
		Status:        item.Status,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTransactionsResponse(items []ports.Purchase) httptransport.ListTransactionsResponse {
	resp := httptransport.ListTransactionsResponse{
		Transactions: make([]httptransport.TransactionDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Transactions = append(resp.Transactions, toTransactionDTO(item))
	}
	return resp
}
