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
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/decoder"
	"github.com/xelalexv/oqtaflux/pkg/record"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

/*
	Policy decodes North Star hard sectored disks, single density in FM, and
	double density in MFM. Sectors carry no header. Their number is given by
	the hard sector hole they follow, which is derived from the time elapsed
	since the start of the revolution. There are ten 20ms sectors per
	revolution.
*/
type Policy struct {
	headerStart  float64
	hardSectorID int
}

//
func NewPolicy() *Policy {
	return &Policy{}
}

//
func (p *Policy) AdvanceToNextRecord(s *decoder.Session) float64 {

	// each sector follows its own sector hole
	if s.Now() != 0 {
		s.SeekToIndexMark()
	}

	clock := s.SeekToPattern(anyRecordPattern)
	p.headerStart = s.Now()

	ms := int(math.Round(p.headerStart / 1e6))
	ms = (ms + 10) / 20 * 20
	p.hardSectorID = (ms / 20) % HardSectors

	return clock
}

//
func (p *Policy) DecodeSectorRecord(s *decoder.Session) {

	var index map[string][2]int
	var length int

	switch s.ReadRaw64() {
	case MfmID:
		index, length = ddIndex, ddRecordLength
	case FmID:
		index, length = sdIndex, sdRecordLength
	default:
		return
	}

	rec := record.NewBlock(index, s.ReadFmMfm(length))

	if int(p.headerStart/revolutionNs) != int(s.Now()/revolutionNs) {
		log.WithField("start", p.headerStart).Debug(
			"discarding North Star sector across revolution boundary")
		return
	}

	sec := s.Sector()
	sec.SetLogical(s.Cylinder(), s.Head(), p.hardSectorID)

	if !rec.Has("checksum") {
		sec.Data = rec.Data
		sec.Status = sector.StatusBadChecksum
		return
	}

	sec.Data = rec.GetSlice("data")
	if Checksum(sec.Data) == rec.GetByte("checksum") {
		sec.Status = sector.StatusOK
	} else {
		sec.Status = sector.StatusBadChecksum
	}
}

// DecodeDataRecord is never called, since each sector is a single record.
func (p *Policy) DecodeDataRecord(s *decoder.Session) {}

//
func (p *Policy) RequiredSectors(cylinder, head int) []sector.Key {
	ret := make([]sector.Key, HardSectors)
	for ix := range ret {
		ret[ix] = sector.Key{Track: cylinder, Side: head, Sector: ix}
	}
	return ret
}
