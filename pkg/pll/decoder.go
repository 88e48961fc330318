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

package pll

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/flux"
)

// good bits required before another loss of sync is reported
const syncLossGoodBits = 256

/*
	Decoder recovers the bit stream from flux with a software phase locked
	loop. Each call to ReadBit advances by one bit cell. The loop starts at the
	reader's current position. If that position carries leading zeroes from a
	pattern match, those are emitted first, followed by a set bit for the pulse
	the pattern started with, which the reader has already consumed.

	A Decoder must not be used after its reader was moved by anything else.
*/
type Decoder struct {
	reader *flux.Reader
	config Config

	clock       float64
	centre      float64
	clockMin    float64
	clockMax    float64
	flux        float64
	leading     int
	clockedZero int
	goodBits    int
	syncLost    bool
}

// NewDecoder creates a decoder with a nominal bit cell of bitcell ns.
func NewDecoder(r *flux.Reader, bitcell float64, c Config) *Decoder {
	return &Decoder{
		reader:   r,
		config:   c,
		clock:    bitcell,
		centre:   bitcell,
		clockMin: bitcell * (1 - c.Adjust),
		clockMax: bitcell * (1 + c.Adjust),
		leading:  r.Tell().Zeroes,
	}
}

// Clock returns the current bit cell length in ns.
func (d *Decoder) Clock() float64 {
	return d.clock
}

//
func (d *Decoder) Centre() float64 {
	return d.centre
}

// SyncLost tells whether the loop ever lost lock after a stable stretch.
func (d *Decoder) SyncLost() bool {
	return d.syncLost
}

//
func (d *Decoder) ReadBit() bool {

	if d.leading > 0 {
		d.leading--
		return false
	} else if d.leading == 0 {
		d.leading--
		return true
	}

	for !d.reader.EOF() && d.flux < d.clock/2 {
		d.flux += float64(d.reader.ReadInterval(d.centre)) *
			flux.NsPerTick * d.config.FluxScale
		d.clockedZero = 0
	}

	d.flux -= d.clock
	if d.flux >= d.clock/2 {
		d.clockedZero++
		d.goodBits++
		return false
	}

	if d.clockedZero <= 3 {
		// in lock, follow the phase error
		d.clock += d.flux * d.config.Adjust

	} else {
		// out of lock, drift back to centre
		d.clock += (d.centre - d.clock) * d.config.Adjust
		if d.goodBits >= syncLossGoodBits {
			if !d.syncLost {
				log.WithFields(log.Fields{
					"position": d.reader.Tell(),
					"clock":    d.clock,
				}).Debug("PLL lost sync")
			}
			d.syncLost = true
		}
		d.goodBits = 0
	}

	d.clock = math.Min(math.Max(d.clockMin, d.clock), d.clockMax)
	d.flux *= 1 - d.config.Phase
	d.goodBits++

	return true
}

// ReadBits reads up to count bits, fewer if the flux ends.
func (d *Decoder) ReadBits(count int) []bool {
	ret := make([]bool, 0, count)
	for ; !d.reader.EOF() && count > 0; count-- {
		ret = append(ret, d.ReadBit())
	}
	return ret
}

// ReadBitsUntil reads bits until the reader reaches the byte offset of until,
// or the flux ends.
func (d *Decoder) ReadBitsUntil(until flux.Position) []bool {
	var ret []bool
	for !d.reader.EOF() && d.reader.Tell().Bytes < until.Bytes {
		ret = append(ret, d.ReadBit())
	}
	return ret
}
