package refinery

import "github.com/servo-app/refinery/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument    = domain.ErrInvalidArgument
	ErrInvalidCoordinates = domain.ErrInvalidCoordinates
	ErrNotFound           = domain.ErrNotFound
	ErrTooManyResults     = domain.ErrTooManyResults
	ErrHistoryUnavailable = domain.ErrHistoryUnavailable
)

// FieldError reports which input field was rejected. Use errors.As() to inspect it.
type FieldError = domain.FieldError
