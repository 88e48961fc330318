/*
   OqtaFlux - magnetic disk flux decoder
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of OqtaFlux.

   OqtaFlux is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   OqtaFlux is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with OqtaFlux. If not, see <http://www.gnu.org/licenses/>.
*/

package flux

import (
	"fmt"
	"io"
	"strings"
)

//
const HistogramBuckets = 256

//
const (
	DefaultNoiseFloorFactor  = 0.01
	DefaultSignalLevelFactor = 0.05
)

// ClockData is the result of GuessClock. Peak bounds and median are in ticks.
type ClockData struct {
	Buckets     [HistogramBuckets]uint32
	NoiseFloor  float64
	SignalLevel float64
	PeakStart   int
	PeakEnd     int
	Median      int
}

//
func (c *ClockData) MedianNs() float64 {
	return float64(c.Median) * NsPerTick
}

//
func (c *ClockData) PeakStartNs() float64 {
	return float64(c.PeakStart) * NsPerTick
}

//
func (c *ClockData) PeakEndNs() float64 {
	return float64(c.PeakEnd) * NsPerTick
}

// Valid tells whether a peak was found at all.
func (c *ClockData) Valid() bool {
	return c.Median > 0
}

/*
	GuessClock reads the remaining flux into a histogram of pulse intervals and
	locates the first peak standing out above the signal level. The noise floor
	and signal level are placed between the histogram's minimum and maximum
	according to the given factors. The peak extends to both sides until the
	bucket counts drop below the noise floor. Its weighted median is the best
	guess for the fundamental interval.
*/
func (r *Reader) GuessClock(noiseFloorFactor, signalLevelFactor float64) ClockData {

	var data ClockData

	for !r.EOF() {
		interval, ok := r.FindEvent(EventPulse)
		if !ok || interval >= HistogramBuckets {
			continue
		}
		data.Buckets[interval]++
	}

	max := data.Buckets[0]
	min := data.Buckets[0]
	for _, b := range data.Buckets {
		if b > max {
			max = b
		}
		if b < min {
			min = b
		}
	}
	data.NoiseFloor = float64(min) + float64(max-min)*noiseFloorFactor
	data.SignalLevel = float64(min) + float64(max-min)*signalLevelFactor

	pulse := 0
	for ; pulse < HistogramBuckets; pulse++ {
		if float64(data.Buckets[pulse]) > data.SignalLevel {
			break
		}
	}
	if pulse == HistogramBuckets {
		return data
	}

	lo := pulse
	for lo > 0 {
		if float64(data.Buckets[lo]) < data.NoiseFloor {
			break
		}
		lo--
	}

	hi := pulse
	for hi < HistogramBuckets-1 {
		if float64(data.Buckets[hi]) < data.NoiseFloor {
			break
		}
		hi++
	}

	var total uint32
	for ix := lo; ix < hi; ix++ {
		total += data.Buckets[ix]
	}

	var count uint32
	median := lo
	for ; median < hi; median++ {
		count += data.Buckets[median]
		if count > total/2 {
			break
		}
	}

	data.PeakStart = lo
	data.PeakEnd = hi
	data.Median = median
	return data
}

// Emit writes a textual histogram, scaled to width columns.
func (c *ClockData) Emit(w io.Writer, width int) {

	var max uint32
	last := 0
	for ix, b := range c.Buckets {
		if b > max {
			max = b
		}
		if b > 0 {
			last = ix
		}
	}
	if max == 0 {
		fmt.Fprintln(w, "no pulses")
		return
	}

	for ix := 0; ix <= last; ix++ {
		bar := int(uint64(c.Buckets[ix]) * uint64(width) / uint64(max))
		fmt.Fprintf(w, "%5.2f us: %-*s %d\n", float64(ix)*NsPerTick/1000,
			width, strings.Repeat("*", bar), c.Buckets[ix])
	}

	fmt.Fprintf(w, "\nnoise floor:  %.1f\n", c.NoiseFloor)
	fmt.Fprintf(w, "signal level: %.1f\n", c.SignalLevel)
	fmt.Fprintf(w, "peak:         %.2f us - %.2f us\n",
		c.PeakStartNs()/1000, c.PeakEndNs()/1000)
	fmt.Fprintf(w, "median:       %.2f us\n", c.MedianNs()/1000)
}
