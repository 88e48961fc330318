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
	"bytes"
	"sort"
)

/*
	Merge combines two reads of the same sector. The first OK read wins.
	Otherwise the read with the better status is kept, on a tie the first one.
	Nothing is ever upgraded, so a sector with a bad checksum stays bad however
	often it is read.
*/
func Merge(a, b *Sector) *Sector {
	if a.Status == StatusOK {
		return a
	}
	if b.Status.Better(a.Status) {
		return b
	}
	return a
}

// mergeDetecting is Merge, but turns two OK reads with different data into a
// conflict, which then sticks.
func mergeDetecting(a, b *Sector) *Sector {

	if a.Status == StatusOK && b.Status == StatusOK &&
		!bytes.Equal(a.Data, b.Data) {
		ret := a.Copy()
		ret.Status = StatusConflict
		return ret
	}

	if a.Status == StatusConflict {
		return a
	}
	if b.Status == StatusConflict {
		return b
	}
	return Merge(a, b)
}

/*
	Collect merges sectors read from several revolutions into one sector per
	logical address, in the order of their first appearance. If detectConflicts
	is set, OK reads that disagree on the data are marked as conflicting.
*/
func Collect(sectors []*Sector, detectConflicts bool) []*Sector {

	var ret []*Sector
	index := map[Key]int{}

	for _, s := range sectors {
		ix, ok := index[s.Key()]
		if !ok {
			index[s.Key()] = len(ret)
			ret = append(ret, s)
			continue
		}
		if detectConflicts {
			ret[ix] = mergeDetecting(ret[ix], s)
		} else {
			ret[ix] = Merge(ret[ix], s)
		}
	}

	return ret
}

// Pad adds a Missing sector for each required address not present in sectors.
func Pad(sectors []*Sector, cylinder, head int, required []Key) []*Sector {

	have := map[Key]bool{}
	for _, s := range sectors {
		have[s.Key()] = true
	}

	for _, k := range required {
		if !have[k] {
			s := New(cylinder, head)
			s.SetLogical(k.Track, k.Side, k.Sector)
			sectors = append(sectors, s)
			have[k] = true
		}
	}

	return sectors
}

// Sort orders sectors by logical address.
func Sort(sectors []*Sector) {
	sort.SliceStable(sectors, func(i, j int) bool {
		return sectors[i].Key().Less(sectors[j].Key())
	})
}

// AllGood tells whether there are sectors, and all of them are OK.
func AllGood(sectors []*Sector) bool {
	if len(sectors) == 0 {
		return false
	}
	for _, s := range sectors {
		if s.Status != StatusOK {
			return false
		}
	}
	return true
}
