package http

type ProductDTO struct {
	ProductID     string `json:"product_id"`
	CreatorID     string `json:"creator_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ProductType   string `json:"product_type"`
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	Status        string `json:"status"`
	SalesCount    int64  `json:"sales_count"`
	Author        string `json:"author,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type ListProductsRequest struct {
	CreatorID   string
	ProductType string
	Page        int
	Limit       int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ListProductsResponse struct {
	Products   []ProductDTO `json:"products"`
	Pagination Pagination   `json:"pagination"`
}

type SearchProductsResponse struct {
	Products []ProductDTO `json:"products"`
}

type CreateProductRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Description   string `json:"description" validate:"max=5000"`
	ProductType   string `json:"product_type" validate:"required,oneof=course ebook digital template"`
	PriceCents    int64  `json:"price_cents" validate:"min=0"`
	Currency      string `json:"currency,omitempty" validate:"omitempty,len=3"`
	CoverImageURL string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	Status        string `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
	Author        string `json:"author,omitempty" validate:"max=200"`
	PageCount     int    `json:"page_count,omitempty" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	PriceCents    *int64  `json:"price_cents,omitempty" validate:"omitempty,min=0"`
	CoverImageURL *string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
	Author        *string `json:"author,omitempty" validate:"omitempty,max=200"`
	PageCount     *int    `json:"page_count,omitempty" validate:"omitempty,min=0"`
}

type TransactionDTO struct {
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	ProductID     string `json:"product_id"`
	SellerID      string `json:"seller_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

type ListTransactionsResponse struct {
	Transactions []TransactionDTO `json:"transactions"`
}

type CheckAccessResponse struct {
	ProductID string `json:"product_id"`
	HasAccess bool   `json:"has_access"`
}
