package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

type AssetKey struct {
	Ticker string
	Months int
}

func (k AssetKey) String() string { return fmt.Sprintf("%s-%d", k.Ticker, k.Months) }

// Quote is the point-in-time quote reported by the quote provider.
// Zero fields were absent in the upstream payload.
type Quote struct {
	Price     float64
	ChangePct float64
}

type PricePoint struct {
	Date  time.Time `json:"date" swaggertype:"string" example:"2025-01-02"`
	Close float64   `json:"close" example:"5868.55"`
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	}{Date: p.Date.Format(dateLayout), Close: p.Close})
}

func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(dateLayout, raw.Date)
	if err != nil {
		return err
	}
	p.Date, p.Close = d, raw.Close
	return nil
}

type AssetSnapshot struct {
	Ticker            string       `json:"ticker" example:"^GSPC"`
	Price             float64      `json:"price" example:"5881.63"`
	ChangePct         float64      `json:"changePct" example:"0.42"`
	Series            []PricePoint `json:"series"`
	RangeVariationPct float64      `json:"rangeVariationPct" example:"2.17"`
}

// AggregatedSnapshot is only ever built from two complete halves.
type AggregatedSnapshot struct {
	Rates ExchangeRates `json:"rates"`
	Asset AssetSnapshot `json:"asset"`
}
