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
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/codec"
	"github.com/xelalexv/oqtaflux/pkg/decoder"
	"github.com/xelalexv/oqtaflux/pkg/record"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

/*
	Policy decodes Agat 840k MFM tracks. Headers and data records each start
	with their own sync sequence. A header carries volume, track and side
	combined in one byte, and the sector number. Data records hold 256 bytes,
	protected by an 8 bit end around carry sum.
*/
type Policy struct{}

//
func NewPolicy() *Policy {
	return &Policy{}
}

//
func (p *Policy) AdvanceToNextRecord(s *decoder.Session) float64 {
	return s.SeekToPattern(anyRecordPattern)
}

//
func (p *Policy) DecodeSectorRecord(s *decoder.Session) {

	if s.ReadRaw48() != SectorID {
		return
	}

	hdr := record.NewBlock(headerIndex,
		codec.DecodeFmMfm(s.ReadRawBits(headerLength*16)))
	if !hdr.Has("trailer") || hdr.GetByte("trailer") != trailer {
		log.WithField("header", hdr.Data).Trace("Agat header without trailer")
		return
	}

	ts := int(hdr.GetByte("trackside"))
	s.Sector().SetLogical(ts>>1, ts&1, int(hdr.GetByte("sector")))
	s.Sector().Status = sector.StatusDataMissing
}

//
func (p *Policy) DecodeDataRecord(s *decoder.Session) {

	if s.ReadRaw48() != DataID {
		return
	}

	rec := record.NewBlock(dataIndex, s.ReadFmMfm(dataLength+1))
	sec := s.Sector()

	if !rec.Has("checksum") {
		sec.Data = rec.Data
		sec.Status = sector.StatusBadChecksum
		return
	}

	sec.Data = rec.GetSlice("data")
	if verify(rec) {
		sec.Status = sector.StatusOK
	} else {
		sec.Status = sector.StatusBadChecksum
	}
}
