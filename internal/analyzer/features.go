package analyzer

// Levels summarises a byte spectrum for the status line.
type Levels struct {
	Low     float64 `json:"low"`
	Mid     float64 `json:"mid"`
	High    float64 `json:"high"`
	Overall float64 `json:"overall"`
	Peak    int     `json:"peak"`
}

// Summarize splits bins into thirds and averages each, normalised to [0,1].
func Summarize(bins []byte) Levels {
	n := len(bins)
	if n == 0 {
		return Levels{}
	}
	third := n / 3
	if third == 0 {
		third = 1
	}
	var lv Levels
	peak := byte(0)
	for i, b := range bins {
		if b > peak {
			peak = b
			lv.Peak = i
		}
	}
	lv.Low = average(bins[:min(third, n)])
	lv.Mid = average(bins[min(third, n):min(2*third, n)])
	lv.High = average(bins[min(2*third, n):])
	lv.Overall = average(bins)
	return lv
}

func average(values []byte) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values)) / 255
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
