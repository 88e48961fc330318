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

package decoder

import (
	"fmt"
	"io"

	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

// Record is the raw content of one record found in flux, kept for diagnostics.
type Record struct {
	Position  flux.Position `json:"-" yaml:"-"`
	Clock     float64       `json:"clock" yaml:"clock"`
	StartTime float64       `json:"startTime" yaml:"startTime"`
	EndTime   float64       `json:"endTime" yaml:"endTime"`
	// line coded bits, packed MSB first
	Raw []byte `json:"raw,omitempty" yaml:"-"`
}

// Track is the result of decoding the flux of one physical track.
type Track struct {
	Cylinder    int              `json:"cylinder" yaml:"cylinder"`
	Head        int              `json:"head" yaml:"head"`
	Revolutions int              `json:"revolutions" yaml:"revolutions"`
	Sectors     []*sector.Sector `json:"sectors" yaml:"sectors"`
	Records     []*Record        `json:"-" yaml:"-"`
}

//
func newTrack(cylinder, head int) *Track {
	return &Track{Cylinder: cylinder, Head: head}
}

// Sector returns the sector with logical address k, or nil.
func (t *Track) Sector(k sector.Key) *sector.Sector {
	for _, s := range t.Sectors {
		if s.Key() == k {
			return s
		}
	}
	return nil
}

// Good tells whether all sectors of this track were read OK.
func (t *Track) Good() bool {
	return sector.AllGood(t.Sectors)
}

// Count returns the number of sectors with status st.
func (t *Track) Count(st sector.Status) int {
	ret := 0
	for _, s := range t.Sectors {
		if s.Status == st {
			ret++
		}
	}
	return ret
}

// Emit writes a one line summary per sector.
func (t *Track) Emit(w io.Writer) {
	io.WriteString(w, fmt.Sprintf("\nTRACK %d.%d: %d sectors, %d revolutions\n",
		t.Cylinder, t.Head, len(t.Sectors), t.Revolutions))
	for _, s := range t.Sectors {
		io.WriteString(w, fmt.Sprintf("%s %-10s %-26s %4d bytes  %.2f us\n",
			s.Status.Char(), s.Key(), s.Status, len(s.Data), s.Clock/1000))
	}
}
