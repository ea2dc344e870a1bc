package metrics

import (
	"math"

	"github.com/fakeyudi/aist/internal/bottleneck"
)

// TimeBreakdown splits total session time into productive time and time
// attributed to each bottleneck kind.
type TimeBreakdown struct {
	TotalMinutes      float64
	ProductiveMinutes float64
	Wasted            map[bottleneck.Kind]float64
}

// Breakdown attributes totalMinutes across bs. When the bottlenecks add up
// to more than the total they are scaled down proportionally.
func Breakdown(bs []bottleneck.Bottleneck, totalMinutes float64) TimeBreakdown {
	wasted := make(map[bottleneck.Kind]float64)
	var sum float64
	for _, b := range bs {
		wasted[b.Kind()] += b.WastedMinutes()
		sum += b.WastedMinutes()
	}

	scale := 1.0
	if sum > totalMinutes && sum > 0 {
		scale = totalMinutes / sum
	}
	for k := range wasted {
		wasted[k] *= scale
	}

	return TimeBreakdown{
		TotalMinutes:      totalMinutes,
		ProductiveMinutes: math.Max(0, totalMinutes-sum*scale),
		Wasted:            wasted,
	}
}

// WastedMinutes sums the scaled bottleneck minutes.
func (b TimeBreakdown) WastedMinutes() float64 {
	var sum float64
	for _, m := range b.Wasted {
		sum += m
	}
	return sum
}

// Efficiency returns the share of non-wasted time as a percentage in
// [0, 100]. An empty total counts as fully efficient.
func (b TimeBreakdown) Efficiency() float64 {
	return Efficiency(b.TotalMinutes, b.WastedMinutes())
}

// Efficiency returns (total - wasted) / total as a percentage in [0, 100],
// or 100 when total is zero.
func Efficiency(total, wasted float64) float64 {
	if total <= 0 {
		return 100
	}
	return math.Min(100, math.Max(0, (total-wasted)/total*100))
}
