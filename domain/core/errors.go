package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors
	ErrInvalidConfig           = errors.New("invalid plan configuration")
	ErrGrowthNotBelowDiscount  = fmt.Errorf("%w: growth rate must be lower than discount rate", ErrInvalidConfig)
	ErrNonPositiveDimension    = fmt.Errorf("%w: dimension must be at least 1", ErrInvalidConfig)
	ErrNegativeDecimals        = fmt.Errorf("%w: decimals must not be negative", ErrInvalidConfig)
	ErrUnknownTerminalMethod   = fmt.Errorf("%w: unknown terminal value method", ErrInvalidConfig)
	ErrInvalidGeneratorSetting = errors.New("invalid generator setting")

	// Table errors
	ErrShapeMismatch        = errors.New("table shape mismatch")
	ErrColumnMismatch       = fmt.Errorf("%w: column labels differ", ErrShapeMismatch)
	ErrEmptyTable           = errors.New("table has no rows or columns")
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// Plan errors
	ErrHorizonMismatch = errors.New("plans have different horizons")
	ErrRowNotFound     = errors.New("row not found")

	// Workbook errors
	ErrSheetMissing   = errors.New("sheet missing from workbook")
	ErrMalformedSheet = errors.New("malformed sheet")
)

// NewShapeError reports two tables whose dimensions do not line up.
func NewShapeError(op string, ar, ac, br, bc int) error {
	return fmt.Errorf("%w: %s on %dx%d and %dx%d", ErrShapeMismatch, op, ar, ac, br, bc)
}

func NewSheetMissingError(sheet string) error {
	return fmt.Errorf("%w: %s", ErrSheetMissing, sheet)
}

func NewMalformedSheetError(sheet, cell, reason string) error {
	return fmt.Errorf("%w: %s!%s: %s", ErrMalformedSheet, sheet, cell, reason)
}

// Error checking helpers
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsShapeError(err error) bool {
	return errors.Is(err, ErrShapeMismatch) || errors.Is(err, ErrEmptyTable)
}

func IsWorkbookError(err error) bool {
	return errors.Is(err, ErrSheetMissing) || errors.Is(err, ErrMalformedSheet)
}
