package service

import "github.com/adam-benyekkou/greenroots-ecom-sub000/internal/apperr"

var (
	ErrEmptyOrder      = apperr.Validation("order must contain at least one item")
	ErrUnauthenticated = apperr.Unauthenticated("authentication required")
	ErrAdminOnly       = apperr.Forbidden("admin role required")
	ErrSecretMissing   = apperr.Internal(nil, "webhook secret is not configured")
)
