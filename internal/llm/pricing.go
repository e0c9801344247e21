package llm

import "strings"

// price is USD per million tokens.
type price struct {
	in, out float64
}

// prices covers the default models and their close relatives, keyed by
// model prefix so dated snapshots match their family.
var prices = map[string]price{
	"gpt-4o-mini":           {0.15, 0.6},
	"gpt-4o":                {2.5, 10},
	"gpt-4.1-mini":          {0.4, 1.6},
	"gpt-4.1":               {2, 8},
	"claude-haiku-4-5":      {1, 5},
	"claude-3-5-haiku":      {0.8, 4},
	"claude-sonnet-4":       {3, 15},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-pro":        {1.25, 10},
}

// EstimateCost prices u for model. OpenRouter vendor prefixes such as
// "google/" are ignored. ok is false for unknown models.
func EstimateCost(model string, u Usage) (usd float64, ok bool) {
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		model = model[i+1:]
	}
	best := ""
	for prefix := range prices {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return 0, false
	}
	p := prices[best]
	return (float64(u.InputTokens)*p.in + float64(u.OutputTokens)*p.out) / 1_000_000, true
}
