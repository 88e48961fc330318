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

package agat

import (
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/record"
)

// raw MFM of ff 95 6a and ff 6a 95
const (
	SectorID = 0x555549111444
	DataID   = 0x555514444911
)

const (
	SectorSize = 256
	// closing byte of headers and data records
	trailer byte = 0x5a
	gapFill byte = 0xaa
)

var (
	sectorIDPattern  = flux.MustPattern(48, SectorID)
	dataIDPattern    = flux.MustPattern(48, DataID)
	anyRecordPattern = flux.NewPatternSet(sectorIDPattern, dataIDPattern)
)

// sector header following the sector ID
var headerIndex = map[string][2]int{
	"volume":    {0, 1},
	"trackside": {1, 1},
	"sector":    {2, 1},
	"trailer":   {3, 1},
}

const headerLength = 4

// data record following the data ID
var dataIndex = map[string][2]int{
	"data":     {0, SectorSize},
	"checksum": {SectorSize, 1},
}

const dataLength = SectorSize + 1

// Checksum is an 8 bit sum of data, where each carry out of the low byte is
// added back in before the next byte.
func Checksum(data []byte) byte {
	var sum uint16
	for _, b := range data {
		if sum > 0xff {
			sum = (sum + 1) & 0xff
		}
		sum += uint16(b)
	}
	return byte(sum)
}

//
func verify(rec *record.Block) bool {
	return rec.Has("checksum") &&
		Checksum(rec.GetSlice("data")) == rec.GetByte("checksum")
}
