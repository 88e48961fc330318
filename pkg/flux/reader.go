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
	"context"

	log "github.com/sirupsen/logrus"
)

// number of intervals scanned between two cancellation checks
const cancelCheckInterval = 4096

/*
	Reader is a cursor over a Map. It decodes the bytecode into events, and can
	seek by time, byte offset, or to the next occurrence of a sync pattern.
	Ticks can only be resolved by replaying the bytecode from a known point, so
	seeking backwards to anything other than a previously visited position
	rewinds to the start and scans forward again.

	A Reader is not safe for concurrent use.
*/
type Reader struct {
	data   []byte
	pos    Position
	config ReaderConfig
}

//
func NewReader(m *Map) *Reader {
	return NewReaderWithConfig(m, DefaultReaderConfig())
}

//
func NewReaderWithConfig(m *Map, c ReaderConfig) *Reader {
	return &Reader{data: m.data, config: c}
}

//
func (r *Reader) Config() ReaderConfig {
	return r.config
}

//
func (r *Reader) Rewind() {
	r.pos = Position{}
}

//
func (r *Reader) EOF() bool {
	return r.pos.Bytes >= len(r.data)
}

//
func (r *Reader) Tell() Position {
	return r.pos
}

// SetZeroes sets the number of leading zero bits pending at the current
// position.
func (r *Reader) SetZeroes(z int) {
	r.pos.Zeroes = z
}

/*
	NextEvent decodes bytes until one carries a pulse or index flag, is a
	desync marker, or the data ends. It returns the event and the number of
	ticks accumulated on the way.
*/
func (r *Reader) NextEvent() (Event, uint) {

	var ticks uint

	for !r.EOF() {
		b := r.data[r.pos.Bytes]
		r.pos.Bytes++
		ticks += uint(b & TickMask)
		if b == DesyncMap || b&(BitPulse|BitIndex) != 0 {
			r.pos.Ticks += int(ticks)
			return Event(b & (BitPulse | BitIndex)), ticks
		}
	}

	r.pos.Ticks += int(ticks)
	return EventEOF, ticks
}

// FindEvent reads events until one matching e is found. It returns the ticks
// travelled, and whether the event was found before the end of data.
func (r *Reader) FindEvent(e Event) (uint, bool) {

	var ticks uint

	for !r.EOF() {
		ev, t := r.NextEvent()
		ticks += t
		if ev == EventEOF {
			return ticks, false
		}
		if ev.Has(e) {
			return ticks, true
		}
	}

	return ticks, false
}

//
func (r *Reader) SkipToEvent(e Event) {
	r.FindEvent(e)
}

/*
	ReadInterval returns the ticks up to the next pulse. Pulses closer than the
	debounce threshold (a fraction of clock, given in nanoseconds) are treated
	as noise, and their interval merged with the following one.
*/
func (r *Reader) ReadInterval(clock float64) uint {

	threshold := uint(clock * r.config.PulseDebounceThreshold / NsPerTick)
	var ticks uint

	for ticks <= threshold {
		t, ok := r.FindEvent(EventPulse)
		if !ok {
			break
		}
		ticks += t
	}

	return ticks
}

// Seek moves the cursor to the first event at or after ns nanoseconds.
func (r *Reader) Seek(ns float64) {

	ticks := int(ns / NsPerTick)
	if ticks < r.pos.Ticks {
		r.Rewind()
	}

	for !r.EOF() && r.pos.Ticks < ticks {
		r.NextEvent()
	}
	r.pos.Zeroes = 0
}

// SeekToByte moves the cursor to the first event boundary at or after byte b.
func (r *Reader) SeekToByte(b int) {

	if b < r.pos.Bytes {
		r.Rewind()
	}

	for !r.EOF() && r.pos.Bytes < b {
		r.NextEvent()
	}
	r.pos.Zeroes = 0
}

/*
	SeekToPosition restores a position previously obtained via Tell. Since such
	a position is always on an event boundary, it is restored directly,
	including its pending zeroes.
*/
func (r *Reader) SeekToPosition(p Position) {
	if p.Bytes > len(r.data) {
		r.SeekToByte(p.Bytes)
		return
	}
	r.pos = p
}

//
func (r *Reader) SeekToIndexMark() {
	r.SkipToEvent(EventIndex)
	r.pos.Zeroes = 0
}

/*
	SeekToPattern scans forward for the matcher. On a match, the cursor is put
	onto the pulse that starts the pattern, with the pattern's leading zeroes
	pending, and the detected clock in nanoseconds is returned along with the
	matcher that actually matched. Matches with implausibly short clocks are
	skipped. When the data runs out, a zero clock is returned.
*/
func (r *Reader) SeekToPattern(m Matcher) (float64, Matcher) {
	clock, matched, _ := r.SeekToPatternContext(context.Background(), m)
	return clock, matched
}

// SeekToPatternContext is SeekToPattern with cooperative cancellation.
func (r *Reader) SeekToPatternContext(ctx context.Context, m Matcher) (
	float64, Matcher, error) {

	count := m.Intervals()
	candidates := make([]uint, count+1)
	positions := make([]Position, count+1)

	for ix := range positions {
		positions[ix] = r.Tell()
	}

	minClock := r.config.MinimumClockUs * 1000

	for scanned := 0; !r.EOF(); scanned++ {

		if scanned%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, nil, err
			}
		}

		if match, ok := m.Matches(candidates, r.config.BitErrorThreshold); ok {
			clock := match.Clock * NsPerTick
			if clock > minClock {
				r.SeekToPosition(positions[count-match.Intervals])
				r.pos.Zeroes = match.Zeroes
				log.WithFields(log.Fields{
					"position": r.pos,
					"clock":    clock,
				}).Trace("pattern match")
				return clock, match.Matcher, nil
			}
			log.WithField("clock", clock).Trace(
				"discarding pattern match below minimum clock")
		}

		copy(candidates, candidates[1:])
		copy(positions, positions[1:])
		candidates[count], _ = r.FindEvent(EventPulse)
		positions[count] = r.Tell()
	}

	return 0, nil, nil
}
