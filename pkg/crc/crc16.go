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

package crc

// CRC-16/CCITT as used by IBM style floppy formats: polynomial 0x1021,
// MSB first, no reflection, no final XOR.
const (
	CCITTPoly = 0x1021
	CCITTInit = 0xffff
)

var ccittTable = makeTable(CCITTPoly)

func makeTable(poly uint16) *[256]uint16 {
	var t [256]uint16
	for ix := range t {
		crc := uint16(ix) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		t[ix] = crc
	}
	return &t
}

// Update continues a CCITT checksum over data.
func Update(crc uint16, data []byte) uint16 {
	for _, b := range data {
		crc = crc<<8 ^ ccittTable[byte(crc>>8)^b]
	}
	return crc
}

// CCITT computes the checksum of data, starting from CCITTInit. Running it
// over data followed by its big endian checksum yields zero.
func CCITT(data []byte) uint16 {
	return Update(CCITTInit, data)
}
