package portfolio

import (
	"fmt"
	"slices"
	"strings"
)

// InstrumentType is the security type of an instrument.
type InstrumentType string

const (
	Stock      InstrumentType = "stock"
	Bond       InstrumentType = "bond"
	ETF        InstrumentType = "etf"
	REIT       InstrumentType = "reit"
	Derivative InstrumentType = "derivative"
	Currency   InstrumentType = "currency"
	Commodity  InstrumentType = "commodity"
	Crypto     InstrumentType = "crypto"
	Custom     InstrumentType = "custom"
)

// InstrumentTypes lists every known instrument type.
var InstrumentTypes = []InstrumentType{Stock, Bond, ETF, REIT, Derivative, Currency, Commodity, Crypto, Custom}

// ParseInstrumentType parses an instrument type, case insensitive.
func ParseInstrumentType(s string) (InstrumentType, error) {
	t := InstrumentType(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(InstrumentTypes, t) {
		return "", fmt.Errorf("unknown instrument type %q", s)
	}
	return t, nil
}

// DomesticCountry is the country code of domestic issuers.
const DomesticCountry = "RU"

// Instrument describes a tradable instrument.
type Instrument struct {
	ID       string         `json:"id"`
	Ticker   string         `json:"ticker,omitempty"`
	Name     string         `json:"name,omitempty"`
	Type     InstrumentType `json:"type"`
	Sector   string         `json:"sector,omitempty"`
	Country  string         `json:"country,omitempty"`
	Currency string         `json:"currency,omitempty"`
}

// IsDomestic reports whether the issuer is domestic.
func (i Instrument) IsDomestic() bool { return strings.EqualFold(i.Country, DomesticCountry) }

// Instruments is a registry of instruments by id.
type Instruments map[string]Instrument

// Lookup returns the instrument with id.
func (r Instruments) Lookup(id string) (Instrument, bool) {
	in, ok := r[id]
	return in, ok
}

// Add registers instruments, replacing any existing one with the same id.
func (r Instruments) Add(list ...Instrument) {
	for _, in := range list {
		r[in.ID] = in
	}
}
