// internal/api/error_codes.go
package api

// API error codes not produced by internal/errors.
const (
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorInvalidBody   = "INVALID_BODY"
	ErrorMissingParam  = "MISSING_PARAMETER"
	ErrorNotFound      = "NOT_FOUND"
	ErrorRouteNotFound = "ROUTE_NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorConflict      = "CONFLICT"
	ErrorRateLimited   = "RATE_LIMIT_EXCEEDED"
)
