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
	Writer assembles the line coded bits of a track. It keeps track of the last
	data bit, so that MFM clock bits come out right across separate writes,
	including raw writes of sync marks.
*/
type Writer struct {
	bits []bool
	last bool
	fm   bool
}

//
func NewMfmWriter() *Writer {
	return &Writer{}
}

//
func NewFmWriter() *Writer {
	return &Writer{fm: true}
}

//
func (w *Writer) IsFm() bool {
	return w.fm
}

// WriteRaw writes the lower count bits of value as they are, MSB first.
func (w *Writer) WriteRaw(value uint64, count int) {
	w.bits = append(w.bits, ToBits(value, count)...)
	if count > 0 {
		w.last = value&1 != 0
	}
}

// WriteBytes encodes data with the writer's line code.
func (w *Writer) WriteBytes(data []byte) {
	if w.fm {
		w.bits = append(w.bits, EncodeFm(data)...)
	} else {
		w.bits = append(w.bits, EncodeMfm(data, &w.last)...)
	}
}

// WriteFill encodes count copies of b.
func (w *Writer) WriteFill(count int, b byte) {
	for ix := 0; ix < count; ix++ {
		w.WriteBytes([]byte{b})
	}
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int {
	return len(w.bits)
}

//
func (w *Writer) Bits() []bool {
	return w.bits
}
