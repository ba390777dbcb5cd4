package core

import "math"

// Heuristic returns the multiple importance sampling weight of a sample
// drawn with density fPdf when the competing strategy has density gPdf.
// For every heuristic h(a, b) + h(b, a) == 1 whenever a+b > 0.
type Heuristic func(fPdf, gPdf float64) float64

// PowerHeuristic calculates the power heuristic (exponent 2)
func PowerHeuristic(fPdf, gPdf float64) float64 {
	if math.IsInf(fPdf, 1) {
		return 1
	}
	f2, g2 := fPdf*fPdf, gPdf*gPdf
	if f2+g2 == 0 || math.IsNaN(f2+g2) {
		return 0
	}
	return f2 / (f2 + g2)
}

// BalanceHeuristic calculates the balance heuristic
func BalanceHeuristic(fPdf, gPdf float64) float64 {
	if math.IsInf(fPdf, 1) {
		return 1
	}
	sum := fPdf + gPdf
	if sum == 0 || math.IsNaN(sum) {
		return 0
	}
	return fPdf / sum
}

// MaxHeuristic gives the whole weight to the strategy with the larger pdf.
// Ties are split evenly.
func MaxHeuristic(fPdf, gPdf float64) float64 {
	switch {
	case fPdf > gPdf:
		return 1
	case fPdf < gPdf:
		return 0
	case fPdf == 0:
		return 0
	default:
		return 0.5
	}
}
