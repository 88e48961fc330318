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

package ibm

import (
	"github.com/xelalexv/oqtaflux/pkg/flux"
)

// address marks
const (
	IDAM      byte = 0xfe
	DAM1      byte = 0xf8
	DAM2      byte = 0xfb
	TRS80DAM1 byte = 0xf9
	TRS80DAM2 byte = 0xfa
)

const (
	mfmSyncByte  byte = 0xa1
	mfmSyncCount      = 3
	// raw MFM of 0xa1 with a missing clock bit
	mfmSyncWord = 0x4489
	// raw MFM of 0xc2 with a missing clock bit, precedes the index mark
	mfmIndexSyncWord = 0x5224
	mfmIndexMark     = 0x5552
	fmIndexMark      = 0xf77a

	// largest size code accepted from a header
	maxSizeCode = 6
)

// raw FM address marks, data with clock 0xc7
const (
	fmIDAM      = 0xf57e
	fmDAM1      = 0xf56a
	fmDAM2      = 0xf56f
	fmTRS80DAM1 = 0xf56b
	fmTRS80DAM2 = 0xf56e
)

var (
	mfmRecordPattern = flux.MustPattern(48, 0x448944894489)

	fmPatterns = map[byte]*flux.Pattern{
		IDAM:      flux.MustPattern(16, fmIDAM),
		DAM1:      flux.MustPattern(16, fmDAM1),
		DAM2:      flux.MustPattern(16, fmDAM2),
		TRS80DAM1: flux.MustPattern(16, fmTRS80DAM1),
		TRS80DAM2: flux.MustPattern(16, fmTRS80DAM2),
	}

	anyRecordPattern = flux.NewPatternSet(
		mfmRecordPattern,
		fmPatterns[IDAM],
		fmPatterns[DAM1],
		fmPatterns[DAM2],
		fmPatterns[TRS80DAM1],
		fmPatterns[TRS80DAM2],
	)
)

// IDAM record, starting with the mark byte
var idamIndex = map[string][2]int{
	"mark":   {0, 1},
	"track":  {1, 1},
	"side":   {2, 1},
	"sector": {3, 1},
	"size":   {4, 1},
	"crc":    {5, 2},
}

const idamLength = 7

//
func isDataMark(b byte) bool {
	switch b {
	case DAM1, DAM2, TRS80DAM1, TRS80DAM2:
		return true
	}
	return false
}

// SizeCode returns the header size code for a sector of size bytes, or -1 if
// there is none.
func SizeCode(size int) int {
	for code := 0; code <= maxSizeCode; code++ {
		if 128<<uint(code) == size {
			return code
		}
	}
	return -1
}
