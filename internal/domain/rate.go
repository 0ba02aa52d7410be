package domain

// Channel names a currency-rate quote track as the rate providers label it.
type Channel string

const (
	ChannelBlue    Channel = "blue"
	ChannelMEP     Channel = "mep"
	ChannelCCL     Channel = "ccl"
	ChannelOficial Channel = "oficial"
	ChannelTarjeta Channel = "tarjeta"
)

// Channels lists every channel in response order.
var Channels = []Channel{ChannelBlue, ChannelMEP, ChannelCCL, ChannelOficial, ChannelTarjeta}

// RateQuote holds a buy/sell pair. Zero means the value is unknown.
type RateQuote struct {
	Buy  float64 `json:"buy" example:"1185"`
	Sell float64 `json:"sell" example:"1205"`
}

// ExchangeRates always carries every channel, even when all of its values are unknown.
type ExchangeRates struct {
	Blue    RateQuote `json:"blue"`
	MEP     RateQuote `json:"mep"`
	CCL     RateQuote `json:"ccl"`
	Oficial RateQuote `json:"oficial"`
	Tarjeta RateQuote `json:"tarjeta"`
}

// Quote returns a pointer to the channel's quote, or nil for an unknown channel.
func (r *ExchangeRates) Quote(ch Channel) *RateQuote {
	switch ch {
	case ChannelBlue:
		return &r.Blue
	case ChannelMEP:
		return &r.MEP
	case ChannelCCL:
		return &r.CCL
	case ChannelOficial:
		return &r.Oficial
	case ChannelTarjeta:
		return &r.Tarjeta
	}
	return nil
}
