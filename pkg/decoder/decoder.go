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
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtaflux/pkg/flux"
	"github.com/xelalexv/oqtaflux/pkg/sector"
)

/*
	Decoder turns flux into sectors, driven by a format policy. A Decoder is
	not safe for concurrent use, since its policy may carry state.
*/
type Decoder struct {
	policy          Policy
	config          Config
	detectConflicts bool
}

//
func New(p Policy, c Config) (*Decoder, error) {
	if p == nil {
		return nil, fmt.Errorf("no format policy")
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decoder configuration: %v", err)
	}
	return &Decoder{policy: p, config: c}, nil
}

// SetDetectConflicts controls whether OK reads of the same sector that
// disagree on the data are marked as conflicting when merging revolutions.
func (d *Decoder) SetDetectConflicts(detect bool) {
	d.detectConflicts = detect
}

//
func (d *Decoder) Config() Config {
	return d.config
}

/*
	DecodeToSectors decodes the sectors found in one revolution of flux. It
	stops when the flux is exhausted. Each sector is returned as found, even if
	the same address appears more than once. An error is only returned if ctx
	got cancelled.
*/
func (d *Decoder) DecodeToSectors(ctx context.Context, m *flux.Map,
	cylinder, head int) (*Track, error) {

	track := newTrack(cylinder, head)
	track.Revolutions = 1
	s := newSession(ctx, m, cylinder, head, d.config)

	if ts, ok := d.policy.(TrackStarter); ok {
		s.sector = sector.New(cylinder, head)
		ts.BeginTrack(s)
	}

	var next *pendingRecord

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := s.Tell()
		s.sector = sector.New(cylinder, head)

		var clock float64
		if next != nil {
			// record turned up while looking for data, try it as a header
			s.clock = next.clock
			s.Seek(next.position)
			start = next.position
			clock = next.clock
			next = nil

		} else {
			clock = d.policy.AdvanceToNextRecord(s)
			if s.err != nil {
				return nil, s.err
			}
			if s.EOF() || clock == 0 {
				break
			}
		}
		s.sector.Clock = clock

		before := s.Tell()
		d.policy.DecodeSectorRecord(s)
		after := s.Tell()
		d.pushRecord(s, track, before, after)

		if s.sector.Status != sector.StatusDataMissing {
			s.sector.Position = before
			s.sector.DataStartTime = before.Ns()
			s.sector.DataEndTime = after.Ns()

		} else {
			var err error
			if next, err = d.findDataRecord(s, track, before, after); err != nil {
				return nil, err
			}
		}

		if s.sector.Status != sector.StatusMissing {
			log.WithFields(log.Fields{
				"sector": s.sector.Key(),
				"status": s.sector.Status,
				"clock":  s.sector.Clock,
			}).Debug("found sector")
			track.Sectors = append(track.Sectors, s.sector)
		}

		// a policy that consumed nothing would find the same record again
		if s.Tell().Bytes <= start.Bytes {
			s.SkipToEvent(flux.EventPulse)
			s.ResetFluxDecoder()
		}
	}

	return track, nil
}

// pendingRecord is a record found after a header, which is not that header's
// data. It gets decoded as the next header.
type pendingRecord struct {
	position flux.Position
	clock    float64
}

/*
	findDataRecord looks at the record following the header of the session's
	sector. If it is the sector's data, the sector is completed. Otherwise the
	sector stays DataMissing, and the record is returned, so that the driver
	loop can decode it as a header of its own.
*/
func (d *Decoder) findDataRecord(s *Session, track *Track,
	before, after flux.Position) (*pendingRecord, error) {

	s.sector.HeaderStartTime = before.Ns()
	s.sector.HeaderEndTime = after.Ns()

	clock := d.policy.AdvanceToNextRecord(s)
	if s.err != nil {
		return nil, s.err
	}
	if s.EOF() || clock == 0 {
		return nil, nil
	}

	before = s.Tell()
	d.policy.DecodeDataRecord(s)
	after = s.Tell()

	if s.sector.Status == sector.StatusDataMissing {
		log.WithFields(log.Fields{
			"sector":   s.sector.Key(),
			"position": before,
		}).Debug("no data record after header")
		return &pendingRecord{position: before, clock: clock}, nil
	}

	s.sector.Position = before
	s.sector.DataStartTime = before.Ns()
	s.sector.DataEndTime = after.Ns()
	d.pushRecord(s, track, before, after)
	return nil, nil
}

//
func (d *Decoder) pushRecord(s *Session, track *Track,
	start, end flux.Position) {
	track.Records = append(track.Records, &Record{
		Position:  start,
		Clock:     s.sector.Clock,
		StartTime: start.Ns(),
		EndTime:   end.Ns(),
		Raw:       s.rawRecord(start, end),
	})
}

/*
	DecodeRevolutions decodes several revolutions of the same track
	independently, and merges the sectors found. A sector read OK in any of the
	revolutions is OK in the result. If the policy knows which sectors the
	track should contain, those not found at all are added as Missing. The
	sectors are sorted by logical address.
*/
func (d *Decoder) DecodeRevolutions(ctx context.Context, maps []*flux.Map,
	cylinder, head int) (*Track, error) {

	ret := newTrack(cylinder, head)
	var all []*sector.Sector

	for ix, m := range maps {
		t, err := d.DecodeToSectors(ctx, m, cylinder, head)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"revolution": ix,
			"sectors":    len(t.Sectors),
		}).Debug("decoded revolution")
		all = append(all, t.Sectors...)
		ret.Records = append(ret.Records, t.Records...)
		ret.Revolutions++
	}

	ret.Sectors = sector.Collect(all, d.detectConflicts)

	if sl, ok := d.policy.(SectorLister); ok {
		ret.Sectors = sector.Pad(
			ret.Sectors, cylinder, head, sl.RequiredSectors(cylinder, head))
	}

	sector.Sort(ret.Sectors)
	return ret, nil
}
