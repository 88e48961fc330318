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
	"bytes"
)

/*
	Map holds one revolution (or several, separated by desync markers) worth of
	flux in bytecode form. Each byte carries up to 63 ticks in its low six bits,
	bit 7 marks a pulse at the end of those ticks, bit 6 an index mark. Longer
	intervals span several bytes. A zero byte is a desync marker.

	A Map is only appended to while it is being built. Once handed to a Reader
	it must not change anymore.
*/
type Map struct {
	data  []byte
	ticks int
}

//
func NewMap() *Map {
	return &Map{}
}

// NewMapFromBytes creates a map from raw bytecode. Any byte value is legal.
func NewMapFromBytes(raw []byte) *Map {
	return NewMap().AppendBytes(raw)
}

// Bytes returns the number of bytecode bytes in this map.
func (m *Map) Bytes() int {
	return len(m.data)
}

// Ticks returns the total number of ticks in this map.
func (m *Map) Ticks() int {
	return m.ticks
}

// Duration returns the total duration of this map in nanoseconds.
func (m *Map) Duration() float64 {
	return float64(m.ticks) * NsPerTick
}

// Raw returns a copy of the bytecode.
func (m *Map) Raw() []byte {
	ret := make([]byte, len(m.data))
	copy(ret, m.data)
	return ret
}

//
func (m *Map) AppendBytes(raw []byte) *Map {
	for _, b := range raw {
		m.ticks += int(b & TickMask)
	}
	m.data = append(m.data, raw...)
	return m
}

//
func (m *Map) AppendByte(b byte) *Map {
	m.ticks += int(b & TickMask)
	m.data = append(m.data, b)
	return m
}

// AppendInterval appends ticks, split across as many bytes as needed.
func (m *Map) AppendInterval(ticks uint32) *Map {
	for ticks >= MaxTicks {
		m.AppendByte(MaxTicks)
		ticks -= MaxTicks
	}
	return m.AppendByte(byte(ticks))
}

// AppendPulse marks the last byte as carrying a pulse.
func (m *Map) AppendPulse() *Map {
	*m.lastByte() |= BitPulse
	return m
}

// AppendIndex marks the last byte as carrying an index mark.
func (m *Map) AppendIndex() *Map {
	*m.lastByte() |= BitIndex
	return m
}

//
func (m *Map) AppendDesync() *Map {
	return m.AppendByte(DesyncMap)
}

/*
	AppendBits converts a line coded bit sequence into flux, with every bit
	taking up exactly one clock period (in nanoseconds), and a pulse wherever a
	bit is set. Trailing zero bits are not represented, since there is no pulse
	to close them.
*/
func (m *Map) AppendBits(bits []bool, clock float64) *Map {
	now := m.Duration()
	for _, b := range bits {
		now += clock
		if b {
			delta := (now - m.Duration()) / NsPerTick
			m.AppendInterval(uint32(delta))
			m.AppendPulse()
		}
	}
	return m
}

// Split splits this map at desync markers into independent maps. Empty
// segments are dropped.
func (m *Map) Split() []*Map {
	var ret []*Map
	for _, seg := range bytes.Split(m.data, []byte{DesyncMap}) {
		if len(seg) > 0 {
			ret = append(ret, NewMapFromBytes(seg))
		}
	}
	return ret
}

// IndexMarks returns the times of all index marks in nanoseconds.
func (m *Map) IndexMarks() []float64 {
	var ret []float64
	r := NewReader(m)
	for {
		if _, ok := r.FindEvent(EventIndex); !ok {
			break
		}
		ret = append(ret, r.Tell().Ns())
	}
	return ret
}

//
func (m *Map) lastByte() *byte {
	if len(m.data) == 0 {
		m.AppendByte(0)
	}
	return &m.data[len(m.data)-1]
}
