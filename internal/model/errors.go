package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCompany   = errors.New("unknown company")
	ErrInsufficientData = errors.New("insufficient data")
	ErrOutOfOrderSample = errors.New("out-of-order sample")
	ErrInvalidSample    = errors.New("invalid sample")
)

// UnknownCompanyError carries the rejected identifier.
type UnknownCompanyError struct {
	Name string
}

func (e *UnknownCompanyError) Error() string {
	return fmt.Sprintf("unknown company %q: must be one of Apple, Microsoft, Alphabet, Amazon, Nvidia, Meta, Tesla", e.Name)
}

func (e *UnknownCompanyError) Unwrap() error { return ErrUnknownCompany }

// FetchError wraps a price source failure for one company.
type FetchError struct {
	Source    string
	Company   Company
	Err       error
	Retryable bool
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch %s: %v", e.Source, e.Company, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// InsufficientDataError reports how many samples were available against how many are required.
type InsufficientDataError struct {
	Company Company
	Have    int
	Need    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: have %d samples, need %d", e.Company, e.Have, e.Need)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }
