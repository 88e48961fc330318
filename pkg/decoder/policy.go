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
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

/*
	Policy is what a disk format contributes to decoding. The driver loop in
	Decoder calls the three methods in turn for every record found on a track.

	AdvanceToNextRecord positions the session at the start of the next record,
	usually by seeking to a sync pattern, and returns the clock found there in
	ns. Zero means the track is exhausted.

	DecodeSectorRecord reads the record at the current position and fills in
	the session's sector. If the record is a valid sector header, but the data
	lives in a separate record, it sets the status to DataMissing. If it also
	decodes the data, it sets OK or BadChecksum. If the record is not a sector
	header at all, it leaves the status at Missing.

	DecodeDataRecord is only called while the sector's status is DataMissing.
	If the record at the current position is the sector's data, it sets OK or
	BadChecksum. Otherwise it leaves the status alone. The sector is then
	reported as DataMissing, and the driver decodes the same record again as
	the next sector's header.

	Policies may keep state between calls, so a policy must not be shared by
	concurrent decoders.
*/
type Policy interface {
	AdvanceToNextRecord(s *Session) float64
	DecodeSectorRecord(s *Session)
	DecodeDataRecord(s *Session)
}

// TrackStarter is implemented by policies that need to prepare for a new
// track, e.g. reset state or seek to the index mark.
type TrackStarter interface {
	BeginTrack(s *Session)
}

// SectorLister is implemented by policies that know which sectors a track is
// supposed to contain.
type SectorLister interface {
	RequiredSectors(cylinder, head int) []sector.Key
}
