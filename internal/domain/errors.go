package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInsufficientData marks inputs too small to compute anything meaningful.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrSolverFailure marks a numerical failure inside an optimizer.
	ErrSolverFailure = errors.New("solver failure")
	// ErrInfeasible marks a constraint set with no admissible solution.
	ErrInfeasible = errors.New("infeasible problem")
	// ErrUpstreamDataGap marks a symbol whose price history could not be loaded.
	ErrUpstreamDataGap = errors.New("upstream data gap")
)

// ErrInvalidInput marks a malformed request, such as a position without a symbol.
var ErrInvalidInput = errors.New("invalid input")

// ValidatePositions rejects positions a caller could not have meant.
func ValidatePositions(positions []Position) error {
	for i, p := range positions {
		if p.Symbol == "" {
			return fmt.Errorf("%w: position %d has no symbol", ErrInvalidInput, i)
		}
		if math.IsNaN(p.Quantity) || math.IsInf(p.Quantity, 0) {
			return fmt.Errorf("%w: position %s has a non-finite quantity", ErrInvalidInput, p.Symbol)
		}
	}
	return nil
}
