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

package northstar

import (
	"github.com/xelalexv/oqtaflux/pkg/flux"
)

// preamble of zeroes followed by the 0xfb sync byte, in MFM and FM
const (
	MfmID = 0xaaaaaaaaaaaa5545
	FmID  = 0xaaaaaaaaaaaaffef
)

const (
	HardSectors        = 10
	SectorSizeSD       = 256
	SectorSizeDD       = 512
	hardSectorNs       = 20e6
	revolutionNs       = HardSectors * hardSectorNs
	syncByte      byte = 0xfb
	gapFill       byte = 0x4f
)

var anyRecordPattern = flux.NewPatternSet(
	flux.MustPattern(64, MfmID),
	flux.MustPattern(64, FmID),
)

// records after the sync byte matched by the pattern
var (
	sdIndex = map[string][2]int{
		"data":     {0, SectorSizeSD},
		"checksum": {SectorSizeSD, 1},
	}
	ddIndex = map[string][2]int{
		"sync":     {0, 1},
		"data":     {1, SectorSizeDD},
		"checksum": {SectorSizeDD + 1, 1},
	}
)

const (
	sdRecordLength = SectorSizeSD + 1
	ddRecordLength = SectorSizeDD + 2
)

// Checksum XORs each byte into the sum and rotates it left by one.
func Checksum(data []byte) byte {
	var c byte
	for _, b := range data {
		c ^= b
		c = c<<1 | c>>7
	}
	return c
}
