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

package sector

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/xelalexv/oqtaflux/pkg/flux"
)

// Key is the logical address of a sector.
type Key struct {
	Track  int
	Side   int
	Sector int
}

//
func (k Key) String() string {
	return fmt.Sprintf("%d.%d.%d", k.Track, k.Side, k.Sector)
}

//
func (k Key) Less(o Key) bool {
	if k.Track != o.Track {
		return k.Track < o.Track
	}
	if k.Side != o.Side {
		return k.Side < o.Side
	}
	return k.Sector < o.Sector
}

/*
	Sector is a decoded sector. Physical cylinder and head are where the flux
	was read. The logical address is what the sector header claims, and is
	filled in by the format policy. All times are in ns from the start of the
	revolution the sector was found in.
*/
type Sector struct {
	PhysicalCylinder int `json:"physicalCylinder" yaml:"physicalCylinder"`
	PhysicalHead     int `json:"physicalHead" yaml:"physicalHead"`

	LogicalTrack  int `json:"logicalTrack" yaml:"logicalTrack"`
	LogicalSide   int `json:"logicalSide" yaml:"logicalSide"`
	LogicalSector int `json:"logicalSector" yaml:"logicalSector"`

	Status Status `json:"status" yaml:"status"`

	Position        flux.Position `json:"-" yaml:"-"`
	Clock           float64       `json:"clock" yaml:"clock"`
	HeaderStartTime float64       `json:"headerStartTime" yaml:"headerStartTime"`
	HeaderEndTime   float64       `json:"headerEndTime" yaml:"headerEndTime"`
	DataStartTime   float64       `json:"dataStartTime" yaml:"dataStartTime"`
	DataEndTime     float64       `json:"dataEndTime" yaml:"dataEndTime"`

	Data []byte `json:"data,omitempty" yaml:"-"`
}

// New creates an empty sector read from the given physical location. Its
// status is Missing until a policy finds a header.
func New(cylinder, head int) *Sector {
	return &Sector{
		PhysicalCylinder: cylinder,
		PhysicalHead:     head,
		Status:           StatusMissing,
	}
}

//
func (s *Sector) Key() Key {
	return Key{Track: s.LogicalTrack, Side: s.LogicalSide,
		Sector: s.LogicalSector}
}

//
func (s *Sector) SetLogical(track, side, sector int) {
	s.LogicalTrack = track
	s.LogicalSide = side
	s.LogicalSector = sector
}

// Copy returns a deep copy of this sector.
func (s *Sector) Copy() *Sector {
	ret := *s
	if s.Data != nil {
		ret.Data = make([]byte, len(s.Data))
		copy(ret.Data, s.Data)
	}
	return &ret
}

//
func (s *Sector) String() string {
	return fmt.Sprintf("sector %s (phys %d.%d): %s, %d bytes",
		s.Key(), s.PhysicalCylinder, s.PhysicalHead, s.Status, len(s.Data))
}

// Emit writes a description of this sector followed by a hex dump of its data.
func (s *Sector) Emit(w io.Writer) {
	io.WriteString(w, fmt.Sprintf(
		"\nSECTOR: %s - status: %s, clock: %.2f us, header: %.3f ms, data: %.3f ms\n",
		s.Key(), s.Status, s.Clock/1000, s.HeaderStartTime/1e6,
		s.DataStartTime/1e6))
	d := hex.Dumper(w)
	defer d.Close()
	d.Write(s.Data)
}
