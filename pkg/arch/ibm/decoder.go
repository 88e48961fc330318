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
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/crc"
	"github.com/xelalexv/oqtaflux/pkg/decoder"
	"github.com/xelalexv/oqtaflux/pkg/record"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

/*
	Options adjust how sector headers are interpreted. SwapSides is for disks
	whose header side bytes are inverted with respect to the physical head. If
	MaxSector is at least MinSector, the sectors in that range are expected on
	every track, and those not found are reported as missing.
*/
type Options struct {
	SwapSides       bool `mapstructure:"swap-sides" yaml:"swapSides"`
	IgnoreSideByte  bool `mapstructure:"ignore-side-byte" yaml:"ignoreSideByte"`
	IgnoreTrackByte bool `mapstructure:"ignore-track-byte" yaml:"ignoreTrackByte"`
	MinSector       int  `mapstructure:"min-sector" yaml:"minSector"`
	MaxSector       int  `mapstructure:"max-sector" yaml:"maxSector"`
}

//
func DefaultOptions() Options {
	return Options{MinSector: 0, MaxSector: -1}
}

/*
	Policy decodes IBM System/34 style tracks, both FM and MFM. Every record
	starts with an address mark. In MFM it is preceded by three 0xa1 sync bytes
	with a missing clock bit, in FM the mark itself has missing clock bits. Both
	headers and data records are protected by a CRC-16/CCITT, which also covers
	the sync bytes and the mark.
*/
type Policy struct {
	options    Options
	sectorSize int
}

//
func NewPolicy(o Options) *Policy {
	return &Policy{options: o}
}

//
func (p *Policy) AdvanceToNextRecord(s *decoder.Session) float64 {
	return s.SeekToPattern(anyRecordPattern)
}

// readMark reads the sync bytes and the address mark at the start of a
// record, and returns them.
func (p *Policy) readMark(s *decoder.Session) []byte {
	var ret []byte
	for len(ret) <= mfmSyncCount {
		b := s.ReadFmMfm(1)
		if len(b) == 0 {
			return nil
		}
		ret = append(ret, b[0])
		if b[0] != mfmSyncByte {
			return ret
		}
	}
	return nil
}

//
func (p *Policy) DecodeSectorRecord(s *decoder.Session) {

	mark := p.readMark(s)
	if len(mark) == 0 || mark[len(mark)-1] != IDAM {
		return
	}
	prefix := mark[:len(mark)-1]

	data := append([]byte{IDAM}, s.ReadFmMfm(idamLength-1)...)
	hdr := record.NewBlock(idamIndex, data)
	if !hdr.Has("crc") {
		return
	}

	want := hdr.GetIntBE("crc")
	got := int(crc.Update(crc.CCITT(prefix), hdr.GetUpTo("crc")))
	if want != got {
		log.WithFields(log.Fields{
			"want": want,
			"got":  got,
		}).Trace("IBM header CRC mismatch")
		return
	}

	size := int(hdr.GetByte("size"))
	if size > maxSizeCode {
		log.WithField("size", size).Debug("IBM header with bad size code")
		return
	}
	p.sectorSize = 128 << uint(size)

	sec := s.Sector()
	track := int(hdr.GetByte("track"))
	side := int(hdr.GetByte("side"))
	if p.options.IgnoreTrackByte {
		track = s.Cylinder()
	}
	if p.options.IgnoreSideByte {
		side = s.Head()
	} else if p.options.SwapSides {
		side ^= 1
	}
	sec.SetLogical(track, side, int(hdr.GetByte("sector")))
	sec.Status = sector.StatusDataMissing
}

//
func (p *Policy) DecodeDataRecord(s *decoder.Session) {

	mark := p.readMark(s)
	if len(mark) == 0 || !isDataMark(mark[len(mark)-1]) {
		return
	}

	data := s.ReadFmMfm(p.sectorSize + 2)
	sec := s.Sector()

	if len(data) < p.sectorSize+2 {
		sec.Data = data
		sec.Status = sector.StatusBadChecksum
		return
	}

	sec.Data = data[:p.sectorSize]
	want := int(data[p.sectorSize])<<8 | int(data[p.sectorSize+1])
	got := int(crc.Update(crc.CCITT(mark), sec.Data))

	if want == got {
		sec.Status = sector.StatusOK
	} else {
		sec.Status = sector.StatusBadChecksum
	}
}

//
func (p *Policy) RequiredSectors(cylinder, head int) []sector.Key {

	if p.options.MaxSector < p.options.MinSector {
		return nil
	}

	var ret []sector.Key
	for ix := p.options.MinSector; ix <= p.options.MaxSector; ix++ {
		ret = append(ret, sector.Key{Track: cylinder, Side: head, Sector: ix})
	}
	return ret
}
