// Package cost prices token usage.
package cost

import (
	"fmt"
	"sort"

	"github.com/fakeyudi/aist/internal/session"
)

// Pricing is the price in USD per million tokens.
type Pricing struct {
	InputPerMillion  float64 `yaml:"input_per_million"`
	OutputPerMillion float64 `yaml:"output_per_million"`
}

// DefaultPricing is the list price of the Opus model family.
var DefaultPricing = Pricing{InputPerMillion: 15, OutputPerMillion: 75}

// Input returns the cost of n billable input tokens.
func (p Pricing) Input(n uint64) float64 {
	return float64(n) / 1_000_000 * p.InputPerMillion
}

// Output returns the cost of n output tokens.
func (p Pricing) Output(n uint64) float64 {
	return float64(n) / 1_000_000 * p.OutputPerMillion
}

// Calculate returns the total cost of the given token counts.
func (p Pricing) Calculate(input, output uint64) float64 {
	return p.Input(input) + p.Output(output)
}

// Format renders a cost in dollars, with four decimals below one cent.
func Format(cost float64) string {
	if cost < 0.01 {
		return fmt.Sprintf("$%.4f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}

// SessionCost is the priced token usage of one session.
type SessionCost struct {
	Session *session.Session
	Input   uint64
	Output  uint64
	Cost    float64
}

// Summary prices a set of sessions.
type Summary struct {
	Input    uint64
	Output   uint64
	Cost     float64
	Sessions []SessionCost // most expensive first
}

// Summarize prices every session and totals the result.
func (p Pricing) Summarize(sessions []*session.Session) Summary {
	var sum Summary
	for _, s := range sessions {
		sc := SessionCost{
			Session: s,
			Input:   s.InputTokens,
			Output:  s.OutputTokens,
			Cost:    p.Calculate(s.InputTokens, s.OutputTokens),
		}
		sum.Input += sc.Input
		sum.Output += sc.Output
		sum.Sessions = append(sum.Sessions, sc)
	}
	sum.Cost = p.Calculate(sum.Input, sum.Output)
	sort.SliceStable(sum.Sessions, func(i, j int) bool {
		return sum.Sessions[i].Cost > sum.Sessions[j].Cost
	})
	return sum
}
