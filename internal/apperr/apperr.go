package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure classes every operation can surface.
// Handlers translate them to HTTP statuses with Status.
var (
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrNotFound          = errors.New("não encontrado")
	ErrInsufficientStock = errors.New("estoque insuficiente")
	ErrConflict          = errors.New("conflito")
	ErrForbidden         = errors.New("acesso negado")
)

// InsufficientStockError identifies the ingredient (and, for orders, the
// order item) whose conditional decrement could not be satisfied.
type InsufficientStockError struct {
	Ingrediente string
	Item        string
}

func (e *InsufficientStockError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("estoque insuficiente para %s (item %s)", e.Ingrediente, e.Item)
	}
	return fmt.Sprintf("estoque insuficiente para %s", e.Ingrediente)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InvalidInputf wraps ErrInvalidInput with a formatted message.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Status maps an error to the HTTP status class the API exposes. Unrecognised
// errors are treated as internal failures.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
