package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Fatal input errors
	ErrUnsupportedFamily       = errors.New("unsupported distribution family")
	ErrInvalidSapwood          = errors.New("invalid sapwood count")
	ErrInvalidCredMass         = errors.New("credible mass must lie strictly between 0 and 1")
	ErrConflictingFellingYears = errors.New("conflicting exact felling years")
	ErrEmptyCombination        = errors.New("no series to combine")

	// Catalog errors
	ErrUnknownDataset = errors.New("unknown sapwood dataset")
	ErrEmptyDataset   = errors.New("sapwood dataset has no observations")

	// Archive errors
	ErrArchiveDisabled = errors.New("estimate archive not configured")
)

// Error constructors with context

func NewUnsupportedFamilyError(name string) error {
	return fmt.Errorf("%w: %q (supported: lognormal, normal, weibull, gamma)", ErrUnsupportedFamily, name)
}

func NewInvalidSapwoodError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSapwood, reason)
}

func NewInvalidCredMassError(got float64) error {
	return fmt.Errorf("%w: got %v", ErrInvalidCredMass, got)
}

func NewUnknownDatasetError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownDataset, name)
}

func NewConflictError(years []int) error {
	return fmt.Errorf("%w: %v", ErrConflictingFellingYears, years)
}
