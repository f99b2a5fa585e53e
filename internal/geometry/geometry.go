// Package geometry turns frequency bins into the closed ribbon path drawn for
// each channel.
package geometry

import "math"

const (
	// Channels is the number of colored ribbons.
	Channels = 3
	// Slots is the number of frequency samples per channel.
	Slots = 5
	// Points is the number of x coordinates per channel.
	Points = 15
)

// ShuffleOrder maps logical slots to bin offsets.
var ShuffleOrder = [Slots]int{1, 3, 0, 4, 2}

// Band returns the bin index read for slot i of channel.
func Band(channel, i int) int {
	return 2*channel + ShuffleOrder[i]*6
}

// Weight is the triangular slot weighting, peaking at the centre slot.
func Weight(i int, amp float64) float64 {
	s := 3 - math.Abs(float64(2-i))
	return s / 3 * amp
}

// Magnitudes samples the five bins of channel. Missing bins read as 0.
func Magnitudes(snapshot []byte, channel int) [Slots]float64 {
	var out [Slots]float64
	for i := range out {
		band := Band(channel, i)
		if band < len(snapshot) {
			out[i] = float64(snapshot[band])
		}
	}
	return out
}

// Ys computes the upper-mirror y coordinates, never above the top edge.
func Ys(mags [Slots]float64, amp, center float64) [Slots]float64 {
	var out [Slots]float64
	for i, m := range mags {
		out[i] = math.Max(0, center-Weight(i, amp)*m)
	}
	return out
}

// Xs computes the evenly spaced x coordinates of channel, centred on a
// surface of the given width and staggered by shift per channel.
func Xs(width, segmentWidth, shift float64, channel int) [Points]float64 {
	var out [Points]float64
	offset := (width - Points*segmentWidth) / 2
	for i := range out {
		out[i] = offset + float64(channel)*shift + float64(i)*segmentWidth
	}
	return out
}
