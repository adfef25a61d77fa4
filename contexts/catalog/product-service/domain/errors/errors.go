package errors

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with different request")
	ErrSelfPurchase           = errors.New("creators cannot purchase their own product")
	ErrAlreadyOwned           = errors.New("product already purchased")

	ErrProductNotFound = errors.New("product not found")
)
