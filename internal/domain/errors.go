package domain

import "errors"

var (
	// ErrProviderUnavailable marks a failed embedding call.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	ErrEmptyCorpus         = errors.New("no products in catalog")
	// ErrCacheCorrupt marks a stored snapshot that cannot be decoded or does not pair up.
	ErrCacheCorrupt    = errors.New("embedding snapshot corrupt")
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("sku already exists")
	ErrInvalidProduct  = errors.New("invalid product")
)
