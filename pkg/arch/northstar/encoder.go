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
	"fmt"

	"github.com/xelalexv/oqtaflux/pkg/codec"
	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

/*
	Encoder writes North Star tracks. Density is chosen by the sector size, 256
	bytes for single and 512 for double density. Each sector is placed into the
	hard sector given by its logical sector number. Every hard sector ends with
	a sector hole, recorded as an index mark.
*/
type Encoder struct{}

//
func NewEncoder() *Encoder {
	return &Encoder{}
}

//
func (e *Encoder) Encode(cylinder, head int, sectors []*sector.Sector) (
	*flux.Map, error) {

	slots := make([]*sector.Sector, HardSectors)
	size := 0

	for _, s := range sectors {
		if s.LogicalSector < 0 || s.LogicalSector >= HardSectors {
			return nil, fmt.Errorf("invalid North Star sector number: %d",
				s.LogicalSector)
		}
		if len(s.Data) != SectorSizeSD && len(s.Data) != SectorSizeDD {
			return nil, fmt.Errorf("unsupported North Star sector size: %d",
				len(s.Data))
		}
		if size != 0 && len(s.Data) != size {
			return nil, fmt.Errorf("mixed sector sizes on track %d.%d",
				cylinder, head)
		}
		if slots[s.LogicalSector] != nil {
			return nil, fmt.Errorf("duplicate sector %d", s.LogicalSector)
		}
		size = len(s.Data)
		slots[s.LogicalSector] = s
	}

	m := flux.NewMap()
	for ix, s := range slots {
		if s != nil {
			appendSlot(m, ix, sectorBits(s.Data, Checksum(s.Data)),
				rawClock(len(s.Data)))
		} else {
			appendSlot(m, ix, nil, 0)
		}
	}
	return m, nil
}

//
func rawClock(size int) float64 {
	if size == SectorSizeDD {
		return 2000
	}
	return 4000
}

// sectorBits returns the line coded bits of a sector
func sectorBits(data []byte, checksum byte) []bool {

	var w *codec.Writer
	if len(data) == SectorSizeDD {
		w = codec.NewMfmWriter()
		w.WriteFill(16, gapFill)
		w.WriteFill(32, 0x00)
		w.WriteBytes([]byte{syncByte, syncByte})
	} else {
		w = codec.NewFmWriter()
		w.WriteFill(9, gapFill)
		w.WriteFill(16, 0x00)
		w.WriteBytes([]byte{syncByte})
	}

	w.WriteBytes(data)
	w.WriteBytes([]byte{checksum})
	w.WriteFill(10, gapFill)

	return w.Bits()
}

// appendSlot appends bits and fills up to the end of hard sector slot, where
// the sector hole is marked
func appendSlot(m *flux.Map, slot int, bits []bool, clock float64) {
	if len(bits) > 0 {
		m.AppendBits(bits, clock)
	}
	end := int(float64(slot+1) * hardSectorNs / flux.NsPerTick)
	m.AppendInterval(uint32(end - m.Ticks())).AppendIndex()
}
