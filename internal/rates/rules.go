package rates

import (
	"strings"

	"marketsnap/internal/domain"
	"marketsnap/internal/numeric"
)

// Path is a named key path into the primary rate document.
type Path struct {
	Name string
	Keys []string
}

func P(keys ...string) Path { return Path{Name: strings.Join(keys, "."), Keys: keys} }

// Lookup walks the path through nested objects and reports whether a value is present.
func (p Path) Lookup(doc map[string]any) (any, bool) {
	var cur any = doc
	for _, k := range p.Keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[k]; !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// Rule is an ordered list of candidate paths for one value.
type Rule []Path

// Extract returns the normalized value of the first path holding a known value, and the
// name of that path. Nothing found yields numeric.Unknown and an empty name.
func (r Rule) Extract(doc map[string]any) (float64, string) {
	for _, p := range r {
		raw, ok := p.Lookup(doc)
		if !ok {
			continue
		}
		if v := numeric.Normalize(raw); numeric.IsKnown(v) {
			return v, p.Name
		}
	}
	return numeric.Unknown, ""
}

type ChannelRule struct {
	Channel domain.Channel
	Buy     Rule
	Sell    Rule
}

// bondRule reads a bond-implied channel. Sell prefers T+1 ("24hs") settlement and buy
// prefers same-day ("ci"), each trying AL30, then GD30, then the channel-level tier, and
// finally the flat price.
func bondRule(ch domain.Channel) ChannelRule {
	c := string(ch)
	return ChannelRule{
		Channel: ch,
		Buy: Rule{
			P(c, "al30", "ci", "price"),
			P(c, "gd30", "ci", "price"),
			P(c, "ci", "price"),
			P(c, "price"),
		},
		Sell: Rule{
			P(c, "al30", "24hs", "price"),
			P(c, "gd30", "24hs", "price"),
			P(c, "24hs", "price"),
			P(c, "price"),
		},
	}
}

// directRule reads bid/ask from the first source channel that has them, accepting the
// compra/venta spelling as a synonym.
func directRule(ch domain.Channel, sources ...string) ChannelRule {
	var buy, sell Rule
	for _, src := range sources {
		buy = append(buy, P(src, "bid"), P(src, "compra"))
		sell = append(sell, P(src, "ask"), P(src, "venta"))
	}
	return ChannelRule{Channel: ch, Buy: buy, Sell: sell}
}

// DefaultRules covers every channel of domain.ExchangeRates.
var DefaultRules = []ChannelRule{
	directRule(domain.ChannelBlue, "blue"),
	bondRule(domain.ChannelMEP),
	bondRule(domain.ChannelCCL),
	directRule(domain.ChannelOficial, "oficial"),
	directRule(domain.ChannelTarjeta, "turista", "tarjeta"),
}

// Extract builds ExchangeRates from the primary document using rules.
func Extract(doc map[string]any, rules []ChannelRule) domain.ExchangeRates {
	var out domain.ExchangeRates
	for _, r := range rules {
		q := out.Quote(r.Channel)
		if q == nil {
			continue
		}
		q.Buy, _ = r.Buy.Extract(doc)
		q.Sell, _ = r.Sell.Extract(doc)
	}
	return out
}
