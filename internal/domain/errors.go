package domain

import "errors"

var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedResponse   = errors.New("malformed upstream response")
	ErrEmptySeries         = errors.New("historical series is empty")
	ErrAggregateFailure    = errors.New("market data unavailable")
)
