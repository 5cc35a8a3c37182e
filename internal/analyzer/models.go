package analyzer

// basicMetrics holds the whole-image color accumulation results shared
// by several verdicts.
type basicMetrics struct {
	avgLuminance, avgSaturation float64
	avgR, avgG, avgB            float64
}
