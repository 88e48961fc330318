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
	"math"
	"math/bits"
)

// Match describes a successful pattern match.
type Match struct {
	Matcher Matcher
	// clock in ticks
	Clock float64
	// number of intervals the match spans
	Intervals int
	// zero bits preceding the first pulse of the pattern
	Zeroes int
}

/*
	Matcher is anything that can be tested against the most recent pulse
	intervals read from flux. The window passed to Matches holds intervals in
	ticks, the most recent one last. It may be longer than what the matcher
	needs.
*/
type Matcher interface {
	Matches(window []uint, threshold float64) (Match, bool)
	Intervals() int
}

/*
	Pattern is a sync mark converted into the distances between its set bits.
	At a true sync mark, the pulse intervals read from flux are exactly these
	distances, scaled by the clock. Zero bits before the first set bit cannot
	be anchored on and are only counted. If the pattern ends in zero bits, a
	final interval is added which only needs to be long enough.
*/
type Pattern struct {
	bits       uint
	value      uint64
	intervals  []uint
	length     uint
	highZeroes int
	lowZero    bool
}

/*
	NewPattern creates a pattern from the lower nbits of value. A zero value can
	never be found in flux and is rejected, as is a width outside of 1 to 64.
*/
func NewPattern(nbits uint, value uint64) (*Pattern, error) {

	if nbits == 0 || nbits > 64 {
		return nil, fmt.Errorf("invalid pattern width: %d", nbits)
	}
	if nbits < 64 {
		value &= (uint64(1) << nbits) - 1
	}
	if value == 0 {
		return nil, fmt.Errorf("pattern of width %d has no set bits", nbits)
	}

	const top = uint64(1) << 63

	p := &Pattern{bits: nbits, value: value}
	lowBits := uint(bits.TrailingZeros64(value))

	v := value << (64 - nbits)
	for v&top == 0 {
		v <<= 1
		p.highZeroes++
	}

	for v != top {
		var interval uint
		for {
			v <<= 1
			interval++
			if v&top != 0 {
				break
			}
		}
		p.intervals = append(p.intervals, interval)
		p.length += interval
	}

	if lowBits > 0 {
		p.lowZero = true
		// not included in length
		p.intervals = append(p.intervals, lowBits+1)
	}

	return p, nil
}

// MustPattern is like NewPattern, but panics on error. It is intended for
// package level pattern definitions.
func MustPattern(nbits uint, value uint64) *Pattern {
	p, err := NewPattern(nbits, value)
	if err != nil {
		panic(err)
	}
	return p
}

//
func (p *Pattern) Bits() uint {
	return p.bits
}

//
func (p *Pattern) Value() uint64 {
	return p.value
}

// IntervalList returns a copy of the pattern's intervals, including a
// trailing unanchored one.
func (p *Pattern) IntervalList() []uint {
	ret := make([]uint, len(p.intervals))
	copy(ret, p.intervals)
	return ret
}

// Length is the pattern's length in clocks, covered by the exact intervals.
func (p *Pattern) Length() uint {
	return p.length
}

//
func (p *Pattern) HighZeroes() int {
	return p.highZeroes
}

//
func (p *Pattern) HasTrailingZeroes() bool {
	return p.lowZero
}

//
func (p *Pattern) Intervals() int {
	return len(p.intervals)
}

//
func (p *Pattern) String() string {
	return fmt.Sprintf("%0*x/%d", (p.bits+3)/4, p.value, p.bits)
}

/*
	Matches checks whether the last intervals of the window form this pattern.
	The clock is derived from the exact intervals. Each of them may then be off
	by at most threshold clocks. The trailing interval, if any, only must not
	be short by more than that.
*/
func (p *Pattern) Matches(window []uint, threshold float64) (Match, bool) {

	count := len(p.intervals)
	if len(window) < count {
		return Match{}, false
	}
	start := window[len(window)-count:]

	exact := count
	if p.lowZero {
		exact--
	}

	var total uint
	for _, i := range start[:exact] {
		total += i
	}
	if total == 0 {
		return Match{}, false
	}
	clock := float64(total) / float64(p.length)

	for ix := 0; ix < exact; ix++ {
		ideal := clock * float64(p.intervals[ix])
		if math.Abs((ideal-float64(start[ix]))/clock) > threshold {
			return Match{}, false
		}
	}

	if p.lowZero {
		ideal := clock * float64(p.intervals[exact])
		if (ideal-float64(start[exact]))/clock > threshold {
			return Match{}, false
		}
	}

	return Match{
		Matcher:   p,
		Clock:     clock,
		Intervals: count,
		Zeroes:    p.highZeroes,
	}, true
}

// PatternSet tests several matchers at once. The first one that matches wins.
type PatternSet struct {
	matchers  []Matcher
	intervals int
}

//
func NewPatternSet(matchers ...Matcher) *PatternSet {
	s := &PatternSet{matchers: matchers}
	for _, m := range matchers {
		if m.Intervals() > s.intervals {
			s.intervals = m.Intervals()
		}
	}
	return s
}

//
func (s *PatternSet) Intervals() int {
	return s.intervals
}

//
func (s *PatternSet) Matches(window []uint, threshold float64) (Match, bool) {
	for _, m := range s.matchers {
		if match, ok := m.Matches(window, threshold); ok {
			return match, true
		}
	}
	return Match{}, false
}
