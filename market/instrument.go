package market

import "time"

// AssetClass identifies what kind of thing an instrument is.
type AssetClass string

const (
	Equity AssetClass = "equity"
	Future AssetClass = "future"
	Option AssetClass = "option"
	FX     AssetClass = "fx"
	Crypto AssetClass = "crypto"
	ETF    AssetClass = "etf"
)

// Instrument describes a tradeable security. Only Symbol and Class are
// required; the remaining fields apply to specific asset classes.
type Instrument struct {
	Symbol   string
	Class    AssetClass
	Exchange string
	Currency string

	// Futures
	Expiry       time.Time
	ContractSize float64
	TickSize     float64

	// Options
	Underlying string
	Strike     float64
	OptionType string // "call" or "put"

	// FX / crypto
	BaseCurrency  string
	QuoteCurrency string
	PipSize       float64
}

func NewEquity(symbol, exchange string) Instrument {
	return Instrument{Symbol: symbol, Class: Equity, Exchange: exchange, Currency: "USD"}
}

func NewFuture(symbol string, expiry time.Time, contractSize float64) Instrument {
	return Instrument{
		Symbol:       symbol,
		Class:        Future,
		Currency:     "USD",
		Expiry:       expiry,
		ContractSize: contractSize,
		TickSize:     0.01,
	}
}

func NewFXPair(base, quote string, pipSize float64) Instrument {
	return Instrument{
		Symbol:        base + quote,
		Class:         FX,
		Currency:      quote,
		BaseCurrency:  base,
		QuoteCurrency: quote,
		PipSize:       pipSize,
	}
}

func NewCrypto(symbol, exchange string) Instrument {
	return Instrument{Symbol: symbol, Class: Crypto, Exchange: exchange, Currency: "USD"}
}

func NewETF(symbol, exchange string) Instrument {
	return Instrument{Symbol: symbol, Class: ETF, Exchange: exchange, Currency: "USD"}
}
