package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "lyceum/contexts/catalog/product-service/domain/errors"
	"lyceum/contexts/catalog/product-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Models lists the row types owned by this adapter, for AutoMigrate.
func Models() []any {
	return []any{&productModel{}, &purchaseModel{}, &accessModel{}, &idempotencyModel{}}
}

func (r *Repository) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]ports.Product, int, error) {
	tx := r.db.WithContext(ctx).Model(&productModel{})
	if filter.CreatorID != "" {
		tx = tx.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.ProductType != "" {
		tx = tx.Where("product_type = ?", filter.ProductType)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []productModel
	if err := tx.
		Order("created_at DESC").
		Order("product_id ASC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}
	return toProducts(rows), int(total), nil
}

func (r *Repository) SearchProducts(ctx context.Context, query string, productType string, limit int) ([]ports.Product, error) {
	tx := r.db.WithContext(ctx).
		Model(&productModel{}).
		Where("status = ?", ports.StatusPublished)
	if productType != "" {
		tx = tx.Where("product_type = ?", productType)
	}
	if query != "" {
		pattern := containsPattern(query)
		tx = tx.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}

	var rows []productModel
	if err := tx.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern is a LIKE pattern that matches query as a literal substring.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}

func (r *Repository) GetProduct(ctx context.Context, productID string) (ports.Product, error) {
	var row productModel
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Product{}, domainerrors.ErrProductNotFound
		}
		return ports.Product{}, err
	}
	return row.toPort(), nil
}

func (r *Repository) CreateProduct(ctx context.Context, product ports.Product) (ports.Product, error) {
	row := productModelFromPort(product)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return ports.Product{}, err
	}
	return row.toPort(), nil
}

func (r *Repository) UpdateProduct(ctx context.Context, productID string, patch ports.ProductPatch, now time.Time) (ports.Product, error) {
	updates := map[string]any{"updated_at": now.UTC()}
	if patch.Name != nil {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		updates["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.PriceCents != nil {
		updates["price_cents"] = *patch.PriceCents
	}
	if patch.CoverImageURL != nil {
		updates["cover_image_url"] = strings.TrimSpace(*patch.CoverImageURL)
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.Author != nil {
		updates["author"] = strings.TrimSpace(*patch.Author)
	}
	if patch.PageCount != nil {
		updates["page_count"] = *patch.PageCount
	}

	result := r.db.WithContext(ctx).
		Model(&productModel{}).
		Where("product_id = ?", productID).
		Updates(updates)
	if result.Error != nil {
		return ports.Product{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ports.Product{}, domainerrors.ErrProductNotFound
	}
	return r.GetProduct(ctx, productID)
}

func (r *Repository) DeleteProduct(ctx context.Context, productID string) error {
	result := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&productModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProductNotFound
	}
	return nil
}

func (r *Repository) CreatePurchase(ctx context.Context, purchase ports.Purchase) (ports.Purchase, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := purchaseModelFromPort(purchase)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		access := accessModel{
			UserID:    purchase.UserID,
			ProductID: purchase.ProductID,
			GrantedAt: purchase.CreatedAt.UTC(),
		}
		if err := tx.Create(&access).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyOwned
			}
			return err
		}
		result := tx.Model(&productModel{}).
			Where("product_id = ?", purchase.ProductID).
			UpdateColumn("sales_count", gorm.Expr("sales_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		return ports.Purchase{}, err
	}
	return purchase, nil
}

func (r *Repository) HasAccess(ctx context.Context, userID string, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&accessModel{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) ListPurchasesByUser(ctx context.Context, userID string, limit int) ([]ports.Purchase, error) {
	var rows []purchaseModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return toPurchases(rows), nil
}

func (r *Repository) ListPurchases(ctx context.Context, limit int) ([]ports.Purchase, error) {
	var rows []purchaseModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return toPurchases(rows), nil
}

func (r *Repository) SummarizeSales(ctx context.Context) (ports.SalesSummary, error) {
	var summary ports.SalesSummary
	if err := r.db.WithContext(ctx).Model(&productModel{}).Count(&summary.TotalProducts).Error; err != nil {
		return ports.SalesSummary{}, err
	}
	var totals struct {
		Purchases int64
		Revenue   int64
	}
	if err := r.db.WithContext(ctx).
		Model(&purchaseModel{}).
		Select("COUNT(*) AS purchases, COALESCE(SUM(amount_cents), 0) AS revenue").
		Scan(&totals).
		Error; err != nil {
		return ports.SalesSummary{}, err
	}
	summary.TotalPurchases = totals.Purchases
	summary.TotalRevenueCents = totals.Revenue
	return summary, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}

	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", key).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}
	return row.toPort(), true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		Payload:     record.Payload,
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", record.Key).
		First(&existing).
		Error; err != nil {
		return err
	}
	if existing.RequestHash != record.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

type productModel struct {
	ProductID     string    `gorm:"column:product_id;primaryKey"`
	CreatorID     string    `gorm:"column:creator_id;index"`
	Name          string    `gorm:"column:name"`
	Description   string    `gorm:"column:description"`
	ProductType   string    `gorm:"column:product_type;index"`
	PriceCents    int64     `gorm:"column:price_cents"`
	Currency      string    `gorm:"column:currency"`
	CoverImageURL string    `gorm:"column:cover_image_url"`
	Status        string    `gorm:"column:status"`
	SalesCount    int64     `gorm:"column:sales_count"`
	Author        string    `gorm:"column:author"`
	PageCount     int       `gorm:"column:page_count"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (productModel) TableName() string {
	return "products"
}

func productModelFromPort(product ports.Product) productModel {
	return productModel{
		ProductID:     product.ProductID,
		CreatorID:     product.CreatorID,
		Name:          product.Name,
		Description:   product.Description,
		ProductType:   product.ProductType,
		PriceCents:    product.PriceCents,
		Currency:      product.Currency,
		CoverImageURL: product.CoverImageURL,
		Status:        product.Status,
		SalesCount:    product.SalesCount,
		Author:        product.Author,
		PageCount:     product.PageCount,
		CreatedAt:     product.CreatedAt.UTC(),
		UpdatedAt:     product.UpdatedAt.UTC(),
	}
}

func (m productModel) toPort() ports.Product {
	return ports.Product{
		ProductID:     m.ProductID,
		CreatorID:     m.CreatorID,
		Name:          m.Name,
		Description:   m.Description,
		ProductType:   m.ProductType,
		PriceCents:    m.PriceCents,
		Currency:      m.Currency,
		CoverImageURL: m.CoverImageURL,
		Status:        m.Status,
		SalesCount:    m.SalesCount,
		Author:        m.Author,
		PageCount:     m.PageCount,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func toProducts(rows []productModel) []ports.Product {
	items := make([]ports.Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items
}

type purchaseModel struct {
	PurchaseID  string    `gorm:"column:purchase_id;primaryKey"`
	UserID      string    `gorm:"column:user_id;index"`
	ProductID   string    `gorm:"column:product_id;index"`
	SellerID    string    `gorm:"column:seller_id"`
	AmountCents int64     `gorm:"column:amount_cents"`
	Currency    string    `gorm:"column:currency"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (purchaseModel) TableName() string {
	return "product_purchases"
}

func purchaseModelFromPort(purchase ports.Purchase) purchaseModel {
	return purchaseModel{
		PurchaseID:  purchase.PurchaseID,
		UserID:      purchase.UserID,
		ProductID:   purchase.ProductID,
		SellerID:    purchase.SellerID,
		AmountCents: purchase.AmountCents,
		Currency:    purchase.Currency,
		Status:      purchase.Status,
		CreatedAt:   purchase.CreatedAt.UTC(),
	}
}

func (m purchaseModel) toPort() ports.Purchase {
	return ports.Purchase{
		PurchaseID:  m.PurchaseID,
		UserID:      m.UserID,
		ProductID:   m.ProductID,
		SellerID:    m.SellerID,
		AmountCents: m.AmountCents,
		Currency:    m.Currency,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func toPurchases(rows []purchaseModel) []ports.Purchase {
	items := make([]ports.Purchase, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items
}

type accessModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	ProductID string    `gorm:"column:product_id;primaryKey"`
	GrantedAt time.Time `gorm:"column:granted_at"`
}

func (accessModel) TableName() string {
	return "product_access"
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "product_idempotency"
}

func (m idempotencyModel) toPort() ports.IdempotencyRecord {
	return ports.IdempotencyRecord{
		Key:         m.Key,
		RequestHash: m.RequestHash,
		Payload:     m.Payload,
		ExpiresAt:   m.ExpiresAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
