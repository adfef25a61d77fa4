package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "lyceum/contexts/catalog/product-service/domain/errors"
	"lyceum/contexts/catalog/product-service/ports"
	"lyceum/internal/shared/gate"
	"lyceum/internal/shared/validation"
)

const resourceProduct = "Product"

type Service struct {
	Repo           ports.Repository
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Guard          gate.Guard
	Logger         *slog.Logger
	IdempotencyTTL time.Duration
}

type CreateProductInput struct {
	Name          string
	Description   string
	ProductType   string
	PriceCents    int64
	Currency      string
	CoverImageURL string
	Status        string
	Author        string
	PageCount     int
}

func (s Service) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]ports.Product, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.ProductType != "" && !validProductType(filter.ProductType) {
		return nil, 0, invalid("product_type", "must be one of: course ebook digital template")
	}
	filter.Status = ports.StatusPublished
	return s.Repo.ListProducts(ctx, filter)
}

func (s Service) ListEbooks(ctx context.Context, page int, limit int) ([]ports.Product, int, error) {
	return s.ListProducts(ctx, ports.ProductFilter{
		ProductType: ports.ProductTypeEbook,
		Page:        page,
		Limit:       limit,
	})
}

func (s Service) SearchProducts(ctx context.Context, query string, productType string, limit int) ([]ports.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if productType != "" && !validProductType(productType) {
		return nil, invalid("product_type", "must be one of: course ebook digital template")
	}
	return s.Repo.SearchProducts(ctx, strings.TrimSpace(query), productType, limit)
}

// GetProduct hides drafts from everyone but their creator and admins.
func (s Service) GetProduct(ctx context.Context, principal *gate.Principal, productID string) (ports.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return ports.Product{}, invalid("product_id", "is required")
	}
	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return ports.Product{}, err
	}
	if product.Status != ports.StatusPublished &&
		!gate.Authorize(principal, gate.OwnedBy(product.CreatorID, true)).Allowed() {
		return ports.Product{}, domainerrors.ErrProductNotFound
	}
	return product, nil
}

func (s Service) CreateProduct(
	ctx context.Context,
	principal *gate.Principal,
	input CreateProductInput,
) (ports.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.ProductType = strings.ToLower(strings.TrimSpace(input.ProductType))
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	if input.Currency == "" {
		input.Currency = "USD"
	}
	if input.Status == "" {
		input.Status = ports.StatusPublished
	}
	if err := validateCreate(input); err != nil {
		return ports.Product{}, err
	}

	if err := s.Guard.Check(ctx, "product.create", resourceProduct, principal, gate.Authenticated().NotBanned()); err != nil {
		return ports.Product{}, err
	}

	productID, err := s.newID(ctx)
	if err != nil {
		return ports.Product{}, err
	}
	now := s.now()
	product, err := s.Repo.CreateProduct(ctx, ports.Product{
		ProductID:     productID,
		CreatorID:     principal.ID,
		Name:          input.Name,
		Description:   strings.TrimSpace(input.Description),
		ProductType:   input.ProductType,
		PriceCents:    input.PriceCents,
		Currency:      input.Currency,
		CoverImageURL: strings.TrimSpace(input.CoverImageURL),
		Status:        input.Status,
		Author:        strings.TrimSpace(input.Author),
		PageCount:     input.PageCount,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return ports.Product{}, err
	}

	ResolveLogger(s.Logger).Info("product created",
		"event", "product_created",
		"module", "catalog/product-service",
		"layer", "application",
		"product_id", product.ProductID,
		"creator_id", product.CreatorID,
		"product_type", product.ProductType,
	)
	return product, nil
}

func (s Service) UpdateProduct(
	ctx context.Context,
	principal *gate.Principal,
	productID string,
	patch ports.ProductPatch,
) (ports.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return ports.Product{}, invalid("product_id", "is required")
	}
	if err := validatePatch(patch); err != nil {
		return ports.Product{}, err
	}

	if err := s.Guard.CheckOwner(ctx, "product.update", resourceProduct, principal, s.ownerOf(productID)); err != nil {
		return ports.Product{}, err
	}
	return s.Repo.UpdateProduct(ctx, productID, patch, s.now())
}

func (s Service) DeleteProduct(ctx context.Context, principal *gate.Principal, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return invalid("product_id", "is required")
	}
	if err := s.Guard.CheckOwner(ctx, "product.delete", resourceProduct, principal, s.ownerOf(productID)); err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, productID); err != nil {
		return err
	}

	ResolveLogger(s.Logger).Info("product deleted",
		"event", "product_deleted",
		"module", "catalog/product-service",
		"layer", "application",
		"product_id", productID,
		"actor_id", principal.ID,
	)
	return nil
}

func (s Service) PurchaseProduct(
	ctx context.Context,
	principal *gate.Principal,
	idempotencyKey string,
	productID string,
) (ports.Purchase, error) {
	var out ports.Purchase
	if strings.TrimSpace(productID) == "" {
		return out, invalid("product_id", "is required")
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}
	if err := s.Guard.Check(ctx, "product.purchase", resourceProduct, principal, gate.Authenticated()); err != nil {
		return out, err
	}

	// Keys are scoped per buyer so two users can never replay each other's purchase.
	key := "purchase:" + principal.ID + ":" + strings.TrimSpace(idempotencyKey)
	requestHash := hashStrings("purchase_product", principal.ID, productID)
	err := s.runIdempotent(
		ctx,
		key,
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			product, err := s.Repo.GetProduct(ctx, productID)
			if err != nil {
				return nil, err
			}
			if product.Status != ports.StatusPublished {
				return nil, domainerrors.ErrProductNotFound
			}
			if product.CreatorID == principal.ID {
				return nil, domainerrors.ErrSelfPurchase
			}
			owned, err := s.Repo.HasAccess(ctx, principal.ID, productID)
			if err != nil {
				return nil, err
			}
			if owned {
				return nil, domainerrors.ErrAlreadyOwned
			}

			purchaseID, err := s.newID(ctx)
			if err != nil {
				return nil, err
			}
			result, err := s.Repo.CreatePurchase(ctx, ports.Purchase{
				PurchaseID:  purchaseID,
				UserID:      principal.ID,
				ProductID:   product.ProductID,
				SellerID:    product.CreatorID,
				AmountCents: product.PriceCents,
				Currency:    product.Currency,
				Status:      "completed",
				CreatedAt:   s.now(),
			})
			if err != nil {
				return nil, err
			}
			return json.Marshal(result)
		},
	)
	return out, err
}

// CheckAccess reports whether the caller may open the product's content.
// Creators and administrators always have access.
func (s Service) CheckAccess(ctx context.Context, principal *gate.Principal, productID string) (bool, error) {
	if strings.TrimSpace(productID) == "" {
		return false, invalid("product_id", "is required")
	}
	if err := s.Guard.Check(ctx, "product.access", resourceProduct, principal, gate.Authenticated()); err != nil {
		return false, err
	}
	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	if product.CreatorID == principal.ID || principal.IsAdmin() {
		return true, nil
	}
	return s.Repo.HasAccess(ctx, principal.ID, productID)
}

func (s Service) ListMyTransactions(ctx context.Context, principal *gate.Principal, limit int) ([]ports.Purchase, error) {
	if err := s.Guard.Check(ctx, "transaction.list_own", "Transaction", principal, gate.Authenticated()); err != nil {
		return nil, err
	}
	return s.Repo.ListPurchasesByUser(ctx, principal.ID, clampLimit(limit))
}

func (s Service) ListAllTransactions(ctx context.Context, principal *gate.Principal, limit int) ([]ports.Purchase, error) {
	if err := s.Guard.Check(ctx, "transaction.list_all", "Transaction", principal, gate.HasRole(gate.RoleAdmin)); err != nil {
		return nil, err
	}
	return s.Repo.ListPurchases(ctx, clampLimit(limit))
}

// SalesSummary feeds the admin analytics read model; callers gate it.
func (s Service) SalesSummary(ctx context.Context) (ports.SalesSummary, error) {
	return s.Repo.SummarizeSales(ctx)
}

func (s Service) ownerOf(productID string) gate.OwnerLookup {
	return func(ctx context.Context) (string, bool, error) {
		product, err := s.Repo.GetProduct(ctx, productID)
		if errors.Is(err, domainerrors.ErrProductNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return product.CreatorID, true, nil
	}
}

func validateCreate(input CreateProductInput) error {
	switch {
	case input.Name == "":
		return invalid("name", "is required")
	case len(input.Name) > 200:
		return invalid("name", "must be at most 200 characters")
	case !validProductType(input.ProductType):
		return invalid("product_type", "must be one of: course ebook digital template")
	case input.PriceCents < 0:
		return invalid("price_cents", "must not be negative")
	case len(input.Currency) != 3:
		return invalid("currency", "must be a 3-letter ISO code")
	case !validStatus(input.Status):
		return invalid("status", "must be one of: draft published")
	case input.PageCount < 0:
		return invalid("page_count", "must not be negative")
	}
	return nil
}

func validatePatch(patch ports.ProductPatch) error {
	if patch.Empty() {
		return invalid("body", "at least one field must be provided")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if patch.PriceCents != nil && *patch.PriceCents < 0 {
		return invalid("price_cents", "must not be negative")
	}
	if patch.Status != nil && !validStatus(*patch.Status) {
		return invalid("status", "must be one of: draft published")
	}
	if patch.PageCount != nil && *patch.PageCount < 0 {
		return invalid("page_count", "must not be negative")
	}
	return nil
}

func validProductType(value string) bool {
	switch value {
	case ports.ProductTypeCourse, ports.ProductTypeEbook, ports.ProductTypeDigital, ports.ProductTypeTemplate:
		return true
	default:
		return false
	}
}

func validStatus(value string) bool {
	return value == ports.StatusDraft || value == ports.StatusPublished
}

func invalid(field string, detail string) error {
	return fmt.Errorf("%w: %w", domainerrors.ErrInvalidRequest, validation.Field(field, detail))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}

func (s Service) newID(ctx context.Context) (string, error) {
	if s.IDGen == nil {
		return "", fmt.Errorf("product service: id generator not configured")
	}
	return s.IDGen.NewID(ctx)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s Service) requireIdempotency(key string) error {
	if strings.TrimSpace(key) == "" {
		return domainerrors.ErrIdempotencyKeyRequired
	}
	return nil
}

func (s Service) runIdempotent(
	ctx context.Context,
	key string,
	requestHash string,
	decode func([]byte) error,
	exec func() ([]byte, error),
) error {
	now := s.now()

	record, found, err := s.Idempotency.Get(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return decode(record.Payload)
	}

	payload, err := exec()
	if err != nil {
		return err
	}
	if err := s.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Payload:     payload,
		ExpiresAt:   now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}

	ResolveLogger(s.Logger).Debug("product purchase committed",
		"event", "product_purchase_committed",
		"module", "catalog/product-service",
		"layer", "application",
		"idempotency_key", key,
	)
	return decode(payload)
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
