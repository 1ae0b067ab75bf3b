package domain

// TokenPricing holds per-token USD rates used for cost estimation.
type TokenPricing struct {
	InputPerToken  float64
	OutputPerToken float64
}

// DefaultPricing is $0.003 per 1K input tokens and $0.015 per 1K output
// tokens.
var DefaultPricing = TokenPricing{
	InputPerToken:  0.000003,
	OutputPerToken: 0.000015,
}

// Cost estimates the USD cost of a token count pair.
func (p TokenPricing) Cost(input, output int64) float64 {
	return float64(input)*p.InputPerToken + float64(output)*p.OutputPerToken
}
