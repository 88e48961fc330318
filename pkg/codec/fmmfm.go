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

/*
	DecodeFmMfm extracts the data bits from an FM or MFM coded bit stream. In
	both codes data and clock bits alternate, starting with a clock bit, so the
	data bits are the odd ones. They are packed MSB first. A trailing partial
	byte is padded with zero bits at the low end.
*/
func DecodeFmMfm(bits []bool) []byte {

	var ret []byte
	var current byte
	count := 0

	for ix := 1; ix < len(bits); ix += 2 {
		current <<= 1
		if bits[ix] {
			current |= 1
		}
		count++
		if count == 8 {
			ret = append(ret, current)
			current = 0
			count = 0
		}
	}

	if count > 0 {
		ret = append(ret, current<<uint(8-count))
	}

	return ret
}

/*
	EncodeMfm encodes data MSB first as MFM. A clock bit is set only between
	two zero data bits. lastBit carries the final data bit across calls, so
	that consecutive chunks join up correctly. Set it to false before the first
	call.
*/
func EncodeMfm(data []byte, lastBit *bool) []bool {

	ret := make([]bool, 0, len(data)*16)

	for _, b := range data {
		for bit := 7; bit >= 0; bit-- {
			d := b&(1<<uint(bit)) != 0
			ret = append(ret, !*lastBit && !d, d)
			*lastBit = d
		}
	}

	return ret
}

// EncodeFm encodes data MSB first as FM, where every clock bit is set.
func EncodeFm(data []byte) []bool {

	ret := make([]bool, 0, len(data)*16)

	for _, b := range data {
		for bit := 7; bit >= 0; bit-- {
			ret = append(ret, true, b&(1<<uint(bit)) != 0)
		}
	}

	return ret
}
