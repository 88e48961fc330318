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

package codec

// ToBytes packs raw bits MSB first, without any decoding. A trailing partial
// byte is padded with zero bits at the low end.
func ToBytes(bits []bool) []byte {

	ret := make([]byte, 0, (len(bits)+7)/8)
	var current byte

	for ix, b := range bits {
		current <<= 1
		if b {
			current |= 1
		}
		if ix%8 == 7 {
			ret = append(ret, current)
			current = 0
		}
	}

	if rem := len(bits) % 8; rem > 0 {
		ret = append(ret, current<<uint(8-rem))
	}

	return ret
}

// ToBits unpacks the lower count bits of value, MSB first. This is how sync
// marks, which break the coding rules, get written.
func ToBits(value uint64, count int) []bool {
	ret := make([]bool, count)
	for ix := 0; ix < count; ix++ {
		ret[ix] = value&(uint64(1)<<uint(count-1-ix)) != 0
	}
	return ret
}

// Uint interprets up to 64 bits as an unsigned number, MSB first.
func Uint(bits []bool) uint64 {
	var ret uint64
	for _, b := range bits {
		ret <<= 1
		if b {
			ret |= 1
		}
	}
	return ret
}
