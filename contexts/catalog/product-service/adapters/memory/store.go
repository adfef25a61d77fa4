package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainerrors "lyceum/contexts/catalog/product-service/domain/errors"
	"lyceum/contexts/catalog/product-service/ports"
)

type Store struct {
	mu          sync.RWMutex
	products    map[string]ports.Product
	access      map[string]map[string]struct{}
	purchases   []ports.Purchase
	idempotency map[string]ports.IdempotencyRecord
	sequence    uint64
}

func NewStore() *Store {
	return &Store{
		products:    make(map[string]ports.Product),
		access:      make(map[string]map[string]struct{}),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

// SeedProduct inserts or replaces a product as-is. Used by fixtures and tests.
func (s *Store) SeedProduct(product ports.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ProductID] = product
}

func (s *Store) ListProducts(_ context.Context, filter ports.ProductFilter) ([]ports.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.Product, 0, len(s.products))
	for _, product := range s.products {
		if filter.CreatorID != "" && product.CreatorID != filter.CreatorID {
			continue
		}
		if filter.ProductType != "" && product.ProductType != filter.ProductType {
			continue
		}
		if filter.Status != "" && product.Status != filter.Status {
			continue
		}
		items = append(items, product)
	}
	sortNewestFirst(items)

	total := len(items)
	start := (filter.Page - 1) * filter.Limit
	if start < 0 || start >= total {
		return []ports.Product{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return append([]ports.Product(nil), items[start:end]...), total, nil
}

func (s *Store) SearchProducts(_ context.Context, query string, productType string, limit int) ([]ports.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	items := make([]ports.Product, 0)
	for _, product := range s.products {
		if product.Status != ports.StatusPublished {
			continue
		}
		if productType != "" && product.ProductType != productType {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(product.Name), needle) &&
			!strings.Contains(strings.ToLower(product.Description), needle) &&
			!strings.Contains(strings.ToLower(product.Author), needle) {
			continue
		}
		items = append(items, product)
	}
	sortNewestFirst(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) GetProduct(_ context.Context, productID string) (ports.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[productID]
	if !ok {
		return ports.Product{}, domainerrors.ErrProductNotFound
	}
	return product, nil
}

func (s *Store) CreateProduct(_ context.Context, product ports.Product) (ports.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ProductID == "" {
		product.ProductID = s.nextID("prod")
	}
	s.products[product.ProductID] = product
	return product, nil
}

func (s *Store) UpdateProduct(_ context.Context, productID string, patch ports.ProductPatch, now time.Time) (ports.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[productID]
	if !ok {
		return ports.Product{}, domainerrors.ErrProductNotFound
	}
	applyPatch(&product, patch)
	product.UpdatedAt = now
	s.products[productID] = product
	return product, nil
}

func (s *Store) DeleteProduct(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return domainerrors.ErrProductNotFound
	}
	delete(s.products, productID)
	return nil
}

func (s *Store) CreatePurchase(_ context.Context, purchase ports.Purchase) (ports.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[purchase.ProductID]
	if !ok {
		return ports.Purchase{}, domainerrors.ErrProductNotFound
	}
	if _, owned := s.access[purchase.UserID][purchase.ProductID]; owned {
		return ports.Purchase{}, domainerrors.ErrAlreadyOwned
	}
	if purchase.PurchaseID == "" {
		purchase.PurchaseID = s.nextID("pur")
	}
	s.purchases = append(s.purchases, purchase)
	if s.access[purchase.UserID] == nil {
		s.access[purchase.UserID] = make(map[string]struct{})
	}
	s.access[purchase.UserID][purchase.ProductID] = struct{}{}
	product.SalesCount++
	s.products[product.ProductID] = product
	return purchase, nil
}

func (s *Store) HasAccess(_ context.Context, userID string, productID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.access[userID][productID]
	return ok, nil
}

func (s *Store) ListPurchasesByUser(_ context.Context, userID string, limit int) ([]ports.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.Purchase, 0)
	for i := len(s.purchases) - 1; i >= 0 && len(items) < limit; i-- {
		if s.purchases[i].UserID == userID {
			items = append(items, s.purchases[i])
		}
	}
	return items, nil
}

func (s *Store) ListPurchases(_ context.Context, limit int) ([]ports.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.Purchase, 0, limit)
	for i := len(s.purchases) - 1; i >= 0 && len(items) < limit; i-- {
		items = append(items, s.purchases[i])
	}
	return items, nil
}

func (s *Store) SummarizeSales(context.Context) (ports.SalesSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := ports.SalesSummary{
		TotalProducts:  int64(len(s.products)),
		TotalPurchases: int64(len(s.purchases)),
	}
	for _, purchase := range s.purchases {
		summary.TotalRevenueCents += purchase.AmountCents
	}
	return summary, nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.After(record.ExpiresAt) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.idempotency[record.Key]; ok && existing.RequestHash != record.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) NewID(context.Context) (string, error) {
	return s.nextID("id"), nil
}

func (s *Store) nextID(prefix string) string {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("%s_%d", prefix, n)
}

func applyPatch(product *ports.Product, patch ports.ProductPatch) {
	if patch.Name != nil {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		product.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.PriceCents != nil {
		product.PriceCents = *patch.PriceCents
	}
	if patch.CoverImageURL != nil {
		product.CoverImageURL = strings.TrimSpace(*patch.CoverImageURL)
	}
	if patch.Status != nil {
		product.Status = *patch.Status
	}
	if patch.Author != nil {
		product.Author = strings.TrimSpace(*patch.Author)
	}
	if patch.PageCount != nil {
		product.PageCount = *patch.PageCount
	}
}

func sortNewestFirst(items []ports.Product) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

var _ ports.Repository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
