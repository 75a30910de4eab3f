package models

import (
	"errors"
	"fmt"
	"math"
)

// ValidationError reports malformed holding data.
type ValidationError struct {
	Symbol string // empty when the symbol itself is missing
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("invalid holding: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid holding %s: %s %s", e.Symbol, e.Field, e.Reason)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks a single holding. It does not check symbol uniqueness.
func (h Holding) Validate() error {
	switch {
	case h.Symbol == "":
		return &ValidationError{Field: "symbol", Reason: "is required"}
	case h.Quantity <= 0:
		return &ValidationError{Symbol: h.Symbol, Field: "quantity", Reason: "must be positive"}
	case !validPrice(h.AvgPrice):
		return &ValidationError{Symbol: h.Symbol, Field: "avgPrice", Reason: "must be a finite non-negative number"}
	case !validPrice(h.CurrentPrice):
		return &ValidationError{Symbol: h.Symbol, Field: "currentPrice", Reason: "must be a finite non-negative number"}
	}
	return nil
}

// ValidateHoldings checks every holding and that symbols are unique.
// The first problem found is returned.
func ValidateHoldings(holdings []Holding) error {
	seen := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		if err := h.Validate(); err != nil {
			return err
		}
		if _, dup := seen[h.Symbol]; dup {
			return &ValidationError{Symbol: h.Symbol, Field: "symbol", Reason: "is duplicated"}
		}
		seen[h.Symbol] = struct{}{}
	}
	return nil
}

func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}
