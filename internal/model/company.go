package model

import "strings"

// Company is one of the fixed set of tracked equities.
type Company string

const (
	Apple     Company = "Apple"
	Microsoft Company = "Microsoft"
	Alphabet  Company = "Alphabet"
	Amazon    Company = "Amazon"
	Nvidia    Company = "Nvidia"
	Meta      Company = "Meta"
	Tesla     Company = "Tesla"
)

var symbols = map[Company]string{
	Apple:     "AAPL",
	Microsoft: "MSFT",
	Alphabet:  "GOOGL",
	Amazon:    "AMZN",
	Nvidia:    "NVDA",
	Meta:      "META",
	Tesla:     "TSLA",
}

var ordered = []Company{Apple, Microsoft, Alphabet, Amazon, Nvidia, Meta, Tesla}

// Companies returns every tracked company in a stable order.
func Companies() []Company {
	out := make([]Company, len(ordered))
	copy(out, ordered)
	return out
}

// Symbol returns the exchange ticker, or "" for a value outside the enumeration.
func (c Company) Symbol() string {
	return symbols[c]
}

// Valid reports whether c belongs to the enumeration.
func (c Company) Valid() bool {
	_, ok := symbols[c]
	return ok
}

func (c Company) String() string { return string(c) }

// ParseCompany resolves a display name or a ticker, case-insensitively.
func ParseCompany(s string) (Company, error) {
	s = strings.TrimSpace(s)
	for _, c := range ordered {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, symbols[c]) {
			return c, nil
		}
	}
	return "", &UnknownCompanyError{Name: s}
}
