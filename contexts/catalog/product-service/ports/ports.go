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

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Payload     []byte
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

const (
	ProductTypeCourse   = "course"
	ProductTypeEbook    = "ebook"
	ProductTypeDigital  = "digital"
	ProductTypeTemplate = "template"

	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Product struct {
	ProductID     string
	CreatorID     string
	Name          string
	Description   string
	ProductType   string
	PriceCents    int64
	Currency      string
	CoverImageURL string
	Status        string
	SalesCount    int64
	Author        string
	PageCount     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ProductFilter struct {
	CreatorID   string
	ProductType string
	Status      string
	Page        int
	Limit       int
}

// ProductPatch holds the fields an owner may change; nil means unchanged.
type ProductPatch struct {
	Name          *string
	Description   *string
	PriceCents    *int64
	CoverImageURL *string
	Status        *string
	Author        *string
	PageCount     *int
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil &&
		p.Description == nil &&
		p.PriceCents == nil &&
		p.CoverImageURL == nil &&
		p.Status == nil &&
		p.Author == nil &&
		p.PageCount == nil
}

type Purchase struct {
	PurchaseID  string
	UserID      string
	ProductID   string
	SellerID    string
	AmountCents int64
	Currency    string
	Status      string
	CreatedAt   time.Time
}

type SalesSummary struct {
	TotalProducts     int64
	TotalPurchases    int64
	TotalRevenueCents int64
}

type Repository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, int, error)
	SearchProducts(ctx context.Context, query string, productType string, limit int) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	CreateProduct(ctx context.Context, product Product) (Product, error)
	UpdateProduct(ctx context.Context, productID string, patch ProductPatch, now time.Time) (Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	CreatePurchase(ctx context.Context, purchase Purchase) (Purchase, error)
	HasAccess(ctx context.Context, userID string, productID string) (bool, error)
	ListPurchasesByUser(ctx context.Context, userID string, limit int) ([]Purchase, error)
	ListPurchases(ctx context.Context, limit int) ([]Purchase, error)
	SummarizeSales(ctx context.Context) (SalesSummary, error)
}
