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
	"strings"
)

// sampling clock of the capture hardware
const TickFrequency = 12000000

// NsPerTick is the duration of one tick in nanoseconds.
const NsPerTick = 1e9 / float64(TickFrequency)

// bytecode layout
const (
	BitPulse  = 0x80
	BitIndex  = 0x40
	TickMask  = 0x3f
	MaxTicks  = 0x3f
	DesyncMap = 0x00
)

/*
	Event is what a Reader reports when it stops on a byte of the bytecode. A
	byte may carry both, pulse and index, in which case the event has both bits
	set. Desync is the zero value, EOF lies outside of the byte range.
*/
type Event int

const (
	EventDesync Event = 0
	EventIndex  Event = BitIndex
	EventPulse  Event = BitPulse
	EventEOF    Event = 0x100
)

// Has tells whether e carries all bits of o. EventDesync only matches itself.
func (e Event) Has(o Event) bool {
	if o == EventDesync {
		return e == EventDesync
	}
	return e&o == o
}

//
func (e Event) String() string {

	switch e {

	case EventDesync:
		return "desync"

	case EventEOF:
		return "eof"
	}

	var parts []string
	if e&EventPulse != 0 {
		parts = append(parts, "pulse")
	}
	if e&EventIndex != 0 {
		parts = append(parts, "index")
	}
	if len(parts) == 0 {
		return "<unknown>"
	}
	return strings.Join(parts, "+")
}
