package market

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"marketsnap/internal/domain"
)

const (
	DefaultTicker = "^GSPC"
	DefaultMonths = 1
	MaxMonths     = 120
)

var (
	ErrTickerInvalid = errors.New("ticker must be 1-20 characters: letters, digits or ^ . - = _")
	ErrMonthsInvalid = errors.New("months must be an integer between 1 and 120")
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9^.=_-]{1,20}$`)

type RequestValidator struct {
	defaultTicker string
	defaultMonths int
}

// ParseAssetKey applies defaults to empty parameters and validates the rest.
// Tickers are upper-cased so "spy" and "SPY" share a cache entry.
func (v *RequestValidator) ParseAssetKey(rawTicker, rawMonths string) (domain.AssetKey, error) {
	ticker := strings.ToUpper(strings.TrimSpace(rawTicker))
	if ticker == "" {
		ticker = v.defaultTicker
	}
	if !tickerPattern.MatchString(ticker) {
		return domain.AssetKey{}, ErrTickerInvalid
	}

	months := v.defaultMonths
	if m := strings.TrimSpace(rawMonths); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > MaxMonths {
			return domain.AssetKey{}, ErrMonthsInvalid
		}
		months = n
	}
	return domain.AssetKey{Ticker: ticker, Months: months}, nil
}

func NewValidator(defaultTicker string, defaultMonths int) *RequestValidator {
	if strings.TrimSpace(defaultTicker) == "" {
		defaultTicker = DefaultTicker
	}
	if defaultMonths < 1 || defaultMonths > MaxMonths {
		defaultMonths = DefaultMonths
	}
	return &RequestValidator{
		defaultTicker: strings.ToUpper(strings.TrimSpace(defaultTicker)),
		defaultMonths: defaultMonths,
	}
}
